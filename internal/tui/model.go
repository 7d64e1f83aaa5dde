package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/chunker"
	"docqa/internal/domain"
)

// Port is the TUI-facing subset of the pipeline.
type Port interface {
	Answer(ctx context.Context, question string) domain.Result
	Summarize(ctx context.Context, prompt string) domain.Result
}

// Mode selects which pipeline operation Enter runs.
type Mode int

const (
	ModeAsk Mode = iota
	ModeSummarize
)

func (m Mode) String() string {
	if m == ModeSummarize {
		return "summarize"
	}
	return "ask"
}

type entry struct {
	mode   Mode
	query  string
	result domain.Result
}

type resultMsg entry

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	service  Port
	input    textinput.Model
	viewport viewport.Model
	mode     Mode
	history  []entry
	cursor   int
	header   string
	status   string
	busy     bool
	ready    bool
}

// New creates a new TUI model instance. header is shown under the title,
// typically the corpus listing.
func New(ctx context.Context, service Port, header string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter (Tab switches mode)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: service, input: ti, viewport: vp, header: header, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header lines, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case resultMsg:
		m.busy = false
		m.history = append(m.history, entry(msg))
		m.cursor = len(m.history) - 1
		m.status = statusLine(entry(msg))
		m.viewport.SetContent(m.renderCurrent())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.mode = 1 - m.mode
			if m.mode == ModeSummarize {
				m.input.Placeholder = "Describe what to summarize and press Enter"
			} else {
				m.input.Placeholder = "Ask a question and press Enter (Tab switches mode)"
			}
			m.status = "Mode: " + m.mode.String()
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.status = blankHint(m.mode)
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Working on %q...", q)
			m.input.SetValue("")
			return m, m.run(m.mode, q)
		case "up":
			if len(m.history) > 0 {
				m.cursor = (m.cursor - 1 + len(m.history)) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "down":
			if len(m.history) > 0 {
				m.cursor = (m.cursor + 1) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) run(mode Mode, q string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		var res domain.Result
		if mode == ModeSummarize {
			res = svc.Summarize(ctx, q)
		} else {
			res = svc.Answer(ctx, q)
		}
		return resultMsg{mode: mode, query: q, result: res}
	}
}

// View renders the layout and the selected result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := lipgloss.NewStyle().Bold(true).Render("Document QA  [" + m.mode.String() + "]")
	header := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.header)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return title + "\n" + header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.history) == 0 {
		return "No results yet."
	}
	e := m.history[m.cursor]
	title := fmt.Sprintf("%d/%d  %s: %s", m.cursor+1, len(m.history), e.mode, e.query)
	if e.result.DocumentID != "" {
		title += fmt.Sprintf("\nsource=%s  score=%.3f", e.result.DocumentID, e.result.Score)
	}
	body := e.result.Text
	if e.mode == ModeAsk && e.result.Status == domain.StatusOK {
		body = highlightBestSentence(body, e.query)
	}
	return title + "\n\n" + body
}

func statusLine(e entry) string {
	switch e.result.Status {
	case domain.StatusOK:
		return fmt.Sprintf("Answered from %s (score %.3f)", e.result.DocumentID, e.result.Score)
	case domain.StatusNoDocuments:
		return "No documents available."
	case domain.StatusNoMatch:
		return "No relevant document found."
	}
	return blankHint(e.mode)
}

func blankHint(mode Mode) string {
	if mode == ModeSummarize {
		return "Please enter a topic or instruction to summarize."
	}
	return "Please enter a question."
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	splitter       = chunker.NewSentenceChunker(0)
)

// highlightBestSentence emphasises the sentence of text sharing the most
// words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	parts := splitter.Sentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return text
	}
	bestIdx, bestScore := 0, 0
	for i, s := range parts {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	if bestScore == 0 {
		return text
	}
	parts[bestIdx] = highlightStyle.Render(parts[bestIdx])
	return strings.Join(parts, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range unicodeWordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
