// Package ui renders transcripts and emotion signatures for terminal
// output. The interactive chat view lives in ui/tui.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/session"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))
)

// RenderTranscript formats a conversation for display, one labeled
// block per turn.
func RenderTranscript(messages []session.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		label := userStyle.Render("You")
		if msg.Role == session.RoleAssistant {
			label = assistantStyle.Render("Zenith")
		}
		b.WriteString(label)
		if !msg.Timestamp.IsZero() {
			b.WriteString(" " + dimStyle.Render(msg.Timestamp.Format("15:04")))
		}
		b.WriteString("\n" + msg.Content + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderEmotions formats an emotion signature as a one-line list,
// highest score first.
func RenderEmotions(emotions []emotion.Emotion) string {
	if len(emotions) == 0 {
		return dimStyle.Render("no emotions recorded")
	}

	parts := make([]string, 0, len(emotions))
	for _, e := range emotions {
		parts = append(parts, fmt.Sprintf("%s %d%%", e.Label, int(e.Score*100+0.5)))
	}
	return strings.Join(parts, ", ")
}
