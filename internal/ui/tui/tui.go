// Package tui is the interactive chat view. The model collects the
// transcript in memory; the caller persists it after the program exits.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/zenith/internal/session"
	"github.com/felixgeelhaar/zenith/internal/ui"
)

// SendFunc delivers a user message and returns the assistant reply plus
// the conversation id assigned by the reply service.
type SendFunc func(remoteID, message string) (reply, newRemoteID string, err error)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

type replyMsg struct {
	reply    string
	remoteID string
	err      error
}

type Model struct {
	Viewport viewport.Model
	Input    textarea.Model

	messages []session.Message
	send     SendFunc
	remoteID string
	waiting  bool
	errText  string
	Ready    bool
	Quitting bool
	Width    int
	Height   int
}

func NewModel(send SendFunc) Model {
	input := textarea.New()
	input.Placeholder = "How are you feeling today?"
	input.SetHeight(3)
	input.Focus()

	return Model{
		Input: input,
		send:  send,
	}
}

// Transcript returns the collected conversation.
func (m Model) Transcript() []session.Message {
	return m.messages
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.Input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.messages = append(m.messages, session.Message{
				Role:      session.RoleUser,
				Content:   text,
				Timestamp: time.Now(),
			})
			m.Input.Reset()
			m.waiting = true
			m.errText = ""
			m.refreshViewport()
			return m, m.sendCmd(text)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-7)
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - 7
		}
		m.Input.SetWidth(msg.Width - 2)
		m.refreshViewport()

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.remoteID = msg.remoteID
			m.messages = append(m.messages, session.Message{
				Role:      session.RoleAssistant,
				Content:   msg.reply,
				Timestamp: time.Now(),
			})
		}
		m.refreshViewport()
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.Ready {
		return "\n  Initializing..."
	}

	header := titleStyle.Render(" Zenith ")

	status := statusStyle.Render(" Press Enter to send, Esc to finish ")
	if m.waiting {
		status = statusStyle.Render(" Thinking... ")
	}
	if m.errText != "" {
		status = errorStyle.Render(" " + m.errText + " ")
	}

	view := fmt.Sprintf("%s\n\n%s\n\n%s\n%s",
		header,
		m.Viewport.View(),
		status,
		m.Input.View())

	if m.Quitting {
		return view + "\n  Saving session...\n"
	}
	return view
}

func (m *Model) refreshViewport() {
	if !m.Ready {
		return
	}
	m.Viewport.SetContent(ui.RenderTranscript(m.messages))
	m.Viewport.GotoBottom()
}

func (m Model) sendCmd(text string) tea.Cmd {
	remoteID := m.remoteID
	return func() tea.Msg {
		reply, newID, err := m.send(remoteID, text)
		return replyMsg{reply: reply, remoteID: newID, err: err}
	}
}
