// Package tui is an in-process chat terminal for opsline.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsline/opsline/internal/app"
	"github.com/opsline/opsline/internal/config"
	"github.com/opsline/opsline/internal/gateway"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	recordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const historyLimit = 200

type transcriptLine struct {
	speaker string
	text    string
}

type model struct {
	service   *gateway.Service
	input     textinput.Model
	lines     []transcriptLine
	sessionID string
	waiting   bool
	errText   string
	quitting  bool
}

type replyMsg struct {
	output gateway.MessageOutput
}

// Run builds the full runtime so the TUI chats through the same pipeline the
// server uses, then hands the terminal to bubbletea.
func Run(cfg config.Config, logger *slog.Logger) error {
	runtime, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer runtime.Close()

	input := textinput.New()
	input.Placeholder = "ask about incidents, e.g. \"show open incidents\""
	input.Focus()
	input.CharLimit = 500

	program := tea.NewProgram(model{
		service: runtime.Gateway(),
		input:   input,
	})
	_, err = program.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case replyMsg:
		m.waiting = false
		m.sessionID = typed.output.SessionID
		m.lines = append(m.lines, transcriptLine{speaker: "opsline", text: typed.output.Text})
		for _, record := range typed.output.Records {
			m.lines = append(m.lines, transcriptLine{
				speaker: "record",
				text: fmt.Sprintf("%s [%s/%s] %s (%s)",
					record.ID, record.Status, record.Priority, record.Title, record.Assignee),
			})
		}
		if len(typed.output.SuggestedActions) > 0 {
			m.lines = append(m.lines, transcriptLine{
				speaker: "suggest",
				text:    "try: " + strings.Join(typed.output.SuggestedActions, " | "),
			})
		}
		m.lines = trimTranscript(m.lines)
		return m, nil

	case tea.KeyMsg:
		switch typed.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			if text == "/quit" || text == "/exit" {
				m.quitting = true
				return m, tea.Quit
			}
			if text == "/clear" {
				if m.sessionID != "" {
					m.service.ClearSession(m.sessionID)
					m.sessionID = ""
				}
				m.lines = nil
				m.errText = ""
				return m, nil
			}
			m.lines = append(m.lines, transcriptLine{speaker: "you", text: text})
			m.waiting = true
			return m, m.send(text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) send(text string) tea.Cmd {
	service := m.service
	sessionID := m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		output := service.HandleMessage(ctx, gateway.MessageInput{SessionID: sessionID, Message: text})
		return replyMsg{output: output}
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString("opsline - /clear resets the session, /quit exits\n\n")
	for _, line := range m.lines {
		switch line.speaker {
		case "you":
			b.WriteString(userStyle.Render("you> ") + line.text + "\n")
		case "record":
			b.WriteString(recordStyle.Render("  "+line.text) + "\n")
		case "suggest":
			b.WriteString(suggestStyle.Render("  "+line.text) + "\n")
		default:
			b.WriteString(assistantStyle.Render("opsline> ") + line.text + "\n")
		}
	}
	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n")
	}
	if m.waiting {
		b.WriteString("thinking...\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	return b.String()
}

func trimTranscript(lines []transcriptLine) []transcriptLine {
	if len(lines) <= historyLimit {
		return lines
	}
	return lines[len(lines)-historyLimit:]
}
