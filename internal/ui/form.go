package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// connectForm collects a single ssh invocation to hand to orchestrator.Connect.
type connectForm struct {
	input textinput.Model
}

func newConnectForm() *connectForm {
	ti := textinput.New()
	ti.Placeholder = "user@host -p 2222 -i ~/.ssh/id_ed25519"
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()
	return &connectForm{input: ti}
}

// update feeds msg to the input and reports the submitted value once the
// user presses Enter.
func (f *connectForm) update(msg tea.KeyMsg) (value string, done bool, cmd tea.Cmd) {
	if msg.String() == "enter" {
		return f.input.Value(), true, nil
	}
	f.input, cmd = f.input.Update(msg)
	return "", false, cmd
}

func (f *connectForm) view() string {
	return "Destination: " + f.input.View() + "\n\nEnter to connect, Esc to cancel"
}

// replyForm collects the answer to one in-flight askpass prompt. Input is
// masked since ssh prompts are almost always for a password or passphrase.
type replyForm struct {
	entry promptEntry
	input textinput.Model
}

func newReplyForm(entry promptEntry) *replyForm {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 512
	ti.Width = 40
	ti.Focus()
	return &replyForm{entry: entry, input: ti}
}

func (f *replyForm) update(msg tea.KeyMsg) (value string, done bool, cmd tea.Cmd) {
	if msg.String() == "enter" {
		return f.input.Value(), true, nil
	}
	f.input, cmd = f.input.Update(msg)
	return "", false, cmd
}

func (f *replyForm) view() string {
	style := lipgloss.NewStyle().Bold(true)
	return style.Render(f.entry.prompt) + "\n\n" + f.input.View() + "\n\nEnter to answer, Esc to cancel"
}
