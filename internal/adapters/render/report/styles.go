package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	account  lipgloss.Style
	detail   lipgloss.Style
	credit   lipgloss.Style
	slash    lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	meta     lipgloss.Style
	closed   lipgloss.Style
	openTag  lipgloss.Style
	idleTag  lipgloss.Style
	summary  lipgloss.Style
	failures lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		credit:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		slash:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		closed:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		openTag:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		idleTag:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		summary:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		failures: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
