package providers

// Kind identifies a backend wire format. The set is closed: every Kind is
// listed in Kinds and built by the registry.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

type kindInfo struct {
	label  string
	models []string
}

var catalogue = map[Kind]kindInfo{
	KindOpenAI: {
		label:  "OpenAI",
		models: []string{"gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"},
	},
	KindAnthropic: {
		label: "Anthropic",
		models: []string{
			"claude-3-opus-20240229",
			"claude-3-sonnet-20240229",
			"claude-3-haiku-20240307",
		},
	},
}

// Kinds returns every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindAnthropic}
}

// ParseKind accepts only the exact lower-case identifiers of Kinds.
func ParseKind(id string) (Kind, error) {
	k := Kind(id)
	if _, ok := catalogue[k]; !ok {
		return "", &UnsupportedProviderError{ID: id}
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}

// Label is the human-facing provider name.
func (k Kind) Label() string {
	if info, ok := catalogue[k]; ok {
		return info.label
	}
	return string(k)
}

// Models returns a copy of the model names offered for k during configuration.
func (k Kind) Models() []string {
	info, ok := catalogue[k]
	if !ok {
		return nil
	}
	out := make([]string, len(info.models))
	copy(out, info.models)
	return out
}
