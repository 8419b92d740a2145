package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-keys/theme"
)

// KeyFace is one on-screen key
type KeyFace struct {
	Color theme.RGB
	Lines []string // label lines, bottom aligned; empty hides the label
}

// RenderKey draws a solid w x h block with the label near the bottom
func RenderKey(k KeyFace, w, h int) string {
	style := lipgloss.NewStyle().
		Width(w).
		Height(h).
		Background(theme.Lipgloss(k.Color)).
		Foreground(theme.Lipgloss(theme.LabelColor(k.Color))).
		Bold(true).
		Align(lipgloss.Center, lipgloss.Bottom)

	lines := make([]string, 0, len(k.Lines))
	for _, l := range k.Lines {
		if len(l) > w {
			l = l[:w]
		}
		lines = append(lines, l)
	}
	if len(lines) > h {
		lines = lines[len(lines)-h:]
	}
	return style.Render(strings.Join(lines, "\n"))
}

// RenderKeyRow lays keys side by side with gap blank columns between them
func RenderKeyRow(keys []KeyFace, w, h, gap int) string {
	spacer := strings.Repeat(" ", gap)
	parts := make([]string, 0, 2*len(keys))
	for i, k := range keys {
		if i > 0 && gap > 0 {
			parts = append(parts, lipgloss.NewStyle().Width(gap).Height(h).Render(spacer))
		}
		parts = append(parts, RenderKey(k, w, h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
