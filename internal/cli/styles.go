package cli

import "github.com/charmbracelet/lipgloss"

var styles = struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Running  lipgloss.Style
	Idle     lipgloss.Style
	Progress lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#03a9f4")),
	Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12),
	Value:    lipgloss.NewStyle().Bold(true),
	Running:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e")),
	Idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Progress: lipgloss.NewStyle().Foreground(lipgloss.Color("#03a9f4")),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
	Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
}
