package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the terminal styles used by the chat and config commands.
type Theme struct {
	Banner  lipgloss.Style
	Hint    lipgloss.Style
	Reply   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

func Default() Theme {
	return Theme{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Hint:    lipgloss.NewStyle().Faint(true),
		Reply:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Plain renders text unchanged. Used for non-terminal output and tests.
func Plain() Theme {
	s := lipgloss.NewStyle()
	return Theme{Banner: s, Hint: s, Reply: s, Error: s, Success: s, Muted: s}
}

// Table renders rows as left-aligned columns separated by two spaces.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := range widths {
			if i < len(r) && lipgloss.Width(r[i]) > widths[i] {
				widths[i] = lipgloss.Width(r[i])
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		cols := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			st := style.Width(w)
			if i < len(widths)-1 {
				st = st.MarginRight(2)
			}
			cols[i] = st.Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	lines := []string{render(header, lipgloss.NewStyle().Bold(true))}
	for _, r := range rows {
		lines = append(lines, render(r, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
