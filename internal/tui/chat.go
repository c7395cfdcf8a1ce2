// Package tui is the terminal chat front-end to the query service. It talks
// only the HTTP contract; all pipeline logic stays server-side.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Asker is the TUI-facing subset of the query client.
type Asker interface {
	Ask(query string) (*AskResponse, error)
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	client   Asker
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
}

// New creates a new chat model.
func New(client Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Sorunuzu yazın ve Enter'a basın"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		client:   client,
		input:    ti,
		viewport: vp,
		status:   "Hazır. Kira hukuku hakkında soru sorun.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.status = "Yanıt bekleniyor..."
				resp, err := m.client.Ask(q)
				if err != nil {
					m.status = "Hata: " + err.Error()
					return m, nil
				}
				m.status = fmt.Sprintf("Yanıtlandı (%d kaynak)", len(resp.RetrievedSources))
				m.viewport.SetContent(renderAnswer(q, resp))
				m.input.SetValue("")
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Yükleniyor..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("TBK Kira Hukuku Asistanı")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle  = lipgloss.NewStyle().Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderAnswer(query string, resp *AskResponse) string {
	var sb strings.Builder
	sb.WriteString(questionStyle.Render("SORU: " + query))
	sb.WriteString("\n\n")
	sb.WriteString(resp.Answer)
	if len(resp.RetrievedSources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(sourceStyle.Render("Kaynaklar:"))
		for i, src := range resp.RetrievedSources {
			line := fmt.Sprintf("\n  %d. %s", i+1, src.Metadata.ArticleNumber)
			if src.Metadata.ArticleHeader != "" {
				line += " / " + src.Metadata.ArticleHeader
			}
			sb.WriteString(sourceStyle.Render(line))
		}
	}
	return sb.String()
}
