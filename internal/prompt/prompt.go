package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user interrupts a prompt (Ctrl-C or EOF).
var ErrAborted = errors.New("prompt aborted")

// Prompter is the interactive collaborator used by the CLI commands.
type Prompter interface {
	Select(label string, items []string, cursor int) (int, error)
	Input(label string) (string, error)
	Secret(label string) (string, error)
}

// Terminal prompts on the controlling terminal using promptui.
type Terminal struct{}

var _ Prompter = Terminal{}

func (Terminal) Select(label string, items []string, cursor int) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("prompt %q: nothing to select", label)
	}
	if cursor < 0 || cursor >= len(items) {
		cursor = 0
	}
	s := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	idx, _, err := s.RunCursorAt(cursor, 0)
	if err != nil {
		return -1, wrap(label, err)
	}
	return idx, nil
}

func (Terminal) Input(label string) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: nonEmpty,
	}
	result, err := p.Run()
	if err != nil {
		return "", wrap(label, err)
	}
	return result, nil
}

func (Terminal) Secret(label string) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: nonEmpty,
	}
	result, err := p.Run()
	if err != nil {
		return "", wrap(label, err)
	}
	return strings.TrimSpace(result), nil
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value must not be empty")
	}
	return nil
}

func wrap(label string, err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return fmt.Errorf("prompt %q failed: %w", label, err)
}
