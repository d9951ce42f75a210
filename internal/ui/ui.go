// Package ui provides the terminal dashboard for ssh-core, built with
// Bubble Tea and styled with Lip Gloss. It renders the live status of the
// single active session, streams "ssh_prompt" events published by the
// askpass listener as they arrive, and lets the user answer a prompt or
// open/close a session without leaving the terminal.
//
// Keyboard interactions:
//
//	c            — Open the connect form (enter an ssh invocation)
//	d            — Disconnect the active session
//	j/k or ↑/↓   — Navigate the pending prompt queue
//	Enter        — Answer the selected prompt
//	q / Ctrl+C   — Quit (tears down the active session first)
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opencode-ai/ssh-core/internal/model"
	"github.com/opencode-ai/ssh-core/internal/orchestrator"
	"github.com/opencode-ai/ssh-core/internal/security"
	"github.com/opencode-ai/ssh-core/internal/uievents"
)

// tickMsg drives the periodic refresh of session status and the prompt queue.
type tickMsg time.Time

// statusMsg updates the status bar, typically after an async connect/disconnect.
type statusMsg string

// promptEntry is one queued, unanswered askpass prompt.
type promptEntry struct {
	id     string
	prompt string
}

type dashboardModel struct {
	orch    *orchestrator.Orchestrator
	emitter *uievents.ChannelEmitter

	session *model.SshSession
	prompts []promptEntry
	sel     int

	connectForm *connectForm
	replyForm   *replyForm

	status string
	width  int
}

func initialModel(orch *orchestrator.Orchestrator, emitter *uievents.ChannelEmitter) dashboardModel {
	return dashboardModel{
		orch:    orch,
		emitter: emitter,
		status:  "Ready. c to connect, d to disconnect, q to quit.",
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.session = m.orch.Status()
		m.drainEvents()
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.connectForm != nil {
			if msg.String() == "esc" {
				m.connectForm = nil
				m.status = "Connect cancelled"
				return m, nil
			}
			value, done, cmd := m.connectForm.update(msg)
			if done {
				m.connectForm = nil
				m.status = "Connecting..."
				return m, m.doConnect(value)
			}
			return m, cmd
		}

		if m.replyForm != nil {
			if msg.String() == "esc" {
				m.replyForm = nil
				m.status = "Reply cancelled"
				return m, nil
			}
			value, done, cmd := m.replyForm.update(msg)
			if done {
				id := m.replyForm.entry.id
				m.replyForm = nil
				m.removePrompt(id)
				m.orch.PromptReply(id, value)
				m.status = "Reply sent"
				return m, nil
			}
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.orch.Shutdown()
			return m, tea.Quit

		case "c":
			if m.session != nil {
				m.status = "A session is already active; disconnect (d) first"
				break
			}
			m.connectForm = newConnectForm()
			m.status = "Enter an ssh invocation, Enter to connect, Esc to cancel"

		case "d":
			if m.session == nil {
				m.status = "No active session"
				break
			}
			m.orch.Disconnect(m.session.Key)
			m.status = "Disconnect requested"

		case "j", "down":
			if m.sel < len(m.prompts)-1 {
				m.sel++
			}

		case "k", "up":
			if m.sel > 0 {
				m.sel--
			}

		case "enter":
			if len(m.prompts) == 0 {
				break
			}
			m.replyForm = newReplyForm(m.prompts[m.sel])
			m.status = "Answer the prompt, Enter to submit, Esc to cancel"
		}

	case statusMsg:
		m.status = string(msg)
	}
	return m, nil
}

// doConnect runs Connect on a worker goroutine (scheduled by Bubble Tea) so
// the authentication round-trip never blocks the UI loop.
func (m dashboardModel) doConnect(command string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		result, err := orch.Connect(command)
		if err != nil {
			return statusMsg("connect failed: " + security.UserMessage(err, true))
		}
		return statusMsg(fmt.Sprintf("connected key=%s url=%s", result.Key, result.URL))
	}
}

// drainEvents pulls every event currently queued on the emitter without
// blocking, turning "ssh_prompt" events into prompt queue entries.
func (m *dashboardModel) drainEvents() {
	if m.emitter == nil {
		return
	}
	for {
		select {
		case evt := <-m.emitter.Events():
			if evt.Name != "ssh_prompt" {
				continue
			}
			if pe, ok := evt.Payload.(model.PromptEvent); ok {
				m.prompts = append(m.prompts, promptEntry{id: pe.ID, prompt: pe.Prompt})
			}
		default:
			return
		}
	}
}

func (m *dashboardModel) removePrompt(id string) {
	out := m.prompts[:0]
	for _, p := range m.prompts {
		if p.id != id {
			out = append(out, p)
		}
	}
	m.prompts = out
	if m.sel >= len(m.prompts) {
		m.sel = len(m.prompts) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func (m dashboardModel) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("ssh-core watch")

	session := strings.Builder{}
	if m.session == nil {
		session.WriteString("(no active session)\n")
	} else {
		session.WriteString(fmt.Sprintf("key:         %s\n", m.session.Key))
		session.WriteString(fmt.Sprintf("destination: %s\n", m.session.Destination))
		session.WriteString(fmt.Sprintf("url:         %s\n", m.session.URL))
		session.WriteString(fmt.Sprintf("started:     %s\n", m.session.StartedAt.Format(time.RFC3339)))
	}

	prompts := strings.Builder{}
	if len(m.prompts) == 0 {
		prompts.WriteString("(no pending prompts)\n")
	}
	for i, p := range m.prompts {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		prompts.WriteString(fmt.Sprintf("%s %s  %s\n", cursor, p.id, p.prompt))
	}

	var overlay string
	if m.connectForm != nil {
		overlay = m.renderPanel("Connect", m.connectForm.view(), lipgloss.Color("214"))
	} else if m.replyForm != nil {
		overlay = m.renderPanel("Answer prompt", m.replyForm.view(), lipgloss.Color("214"))
	}

	quickHelp := "Keys: c connect | d disconnect | j/k select prompt | Enter answer | q quit"

	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		quickHelp,
		m.renderPanel("Session", session.String(), lipgloss.Color("69")),
		m.renderPanel("Pending prompts", prompts.String(), lipgloss.Color("63")),
		overlay,
		m.renderPanel("Status", m.status, lipgloss.Color("205")),
	)
}

func (m dashboardModel) renderPanel(title, body string, accent lipgloss.Color) string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}

// Run starts the watch dashboard as a full-screen terminal application,
// publishing askpass prompt events from the orchestrator's emitter onto the
// prompt queue until the user quits (which tears down the active session).
func Run(orch *orchestrator.Orchestrator, emitter *uievents.ChannelEmitter) error {
	p := tea.NewProgram(initialModel(orch, emitter), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
