package tui

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/chat"
)

// Asker is the TUI-facing subset of the chat session.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

type message struct {
	fromUser bool
	text     string
}

type answerMsg struct{ text string }
type answerErrMsg struct{ err error }

// Model is the Bubble Tea model for the chat client. A submission
// moves it from idle to submitting; further submissions are ignored
// until the in-flight pipeline finishes.
type Model struct {
	session    Asker
	input      textinput.Model
	viewport   viewport.Model
	spin       spinner.Model
	messages   []message
	submitting bool
	ready      bool
	width      int
}

// New creates a new chat model around one session.
func New(session Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{session: session, input: ti, viewport: vp, spin: sp, width: 80}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and pipeline-completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, qh := inputBoxStyle.GetFrameSize()
		_, th := transcriptStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.messages = append(m.messages, message{text: msg.text})
		m.submitting = false
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case answerErrMsg:
		// The raw error goes to the log for the operator; the user only
		// ever sees the fixed fallback line.
		log.Printf("submission failed: %v", msg.err)
		m.messages = append(m.messages, message{text: chat.FallbackMessage})
		m.submitting = false
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			if m.submitting {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.messages = append(m.messages, message{fromUser: true, text: q})
			m.input.SetValue("")
			m.submitting = true
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.spin.Tick, ask(m.session, q))
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the transcript, input box, and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Knowledge Bank")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := "Enter to send, Ctrl+C to quit."
	if m.submitting {
		status = m.spin.View() + " Thinking..."
	}
	return header + "\n" + transcript + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return "Ask anything about the knowledge base."
	}
	width := max(20, m.width-4)
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.fromUser {
			b.WriteString(userStyle.Render("You: ") + lipgloss.NewStyle().Width(width).Render(msg.text))
		} else {
			b.WriteString(botStyle.Render("Bot: ") + lipgloss.NewStyle().Width(width).Render(msg.text))
		}
	}
	return b.String()
}

func ask(session Asker, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := session.Ask(context.Background(), question)
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{text: answer}
	}
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
