package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"jobworkflow/internal/config"
	"jobworkflow/internal/db"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// queueLimit caps how many queue rows one refresh loads.
const queueLimit = 200

// ── Styles ──────────────────────────────────────────────────────────────────

const pad = 2 // horizontal padding on each side

var (
	frameStyle    = lipgloss.NewStyle().Padding(1, pad)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("37"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	statusStyle   = map[db.Status]lipgloss.Style{
		db.StatusNew:           lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		db.StatusShortlist:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		db.StatusReviewed:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		db.StatusResumeWritten: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		db.StatusApplied:       lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		db.StatusReject:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		db.StatusGhosted:       lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// ── Model ───────────────────────────────────────────────────────────────────

// Model is the BubbleTea model for queue triage.
//
// Navigation depth:
//
//	selected == nil → queue list
//	selected != nil → job detail with scrollable description
type Model struct {
	store *db.Store
	cfg   *config.Config

	// Queue list
	jobs   []db.Job
	counts map[db.Status]int
	cursor int

	// Job detail with rendered description
	selected     *db.Job
	lines        []string
	scrollOffset int

	// Confirmation prompt and action feedback
	confirmReject bool
	confirmJobID  int64
	actionErr     error
	notice        string

	err    error
	width  int
	height int
}

func NewModel(store *db.Store, cfg *config.Config) Model {
	return Model{store: store, cfg: cfg}
}

// ── Messages ────────────────────────────────────────────────────────────────

type queueMsg struct {
	jobs   []db.Job
	counts map[db.Status]int
}
type actionResultMsg struct {
	status db.Status
	id     int64
	err    error
}
type errMsg error

// ── Init / Commands ─────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd { return m.fetchQueue }

func (m Model) fetchQueue() tea.Msg {
	ctx := context.Background()
	jobs, _, _, err := m.store.QueryNew(ctx, queueLimit, nil)
	if err != nil {
		return errMsg(err)
	}
	counts, err := m.store.CountByStatus(ctx)
	if err != nil {
		return errMsg(err)
	}
	return queueMsg{jobs: jobs, counts: counts}
}

// setStatus returns a command that moves one job to the given status.
func (m Model) setStatus(id int64, status db.Status) tea.Cmd {
	return func() tea.Msg {
		err := m.store.UpdateStatuses(context.Background(),
			[]db.StatusUpdate{{ID: id, Status: status}}, db.Now())
		return actionResultMsg{status: status, id: id, err: err}
	}
}

// openPosting opens the selected job URL in the default browser.
func (m Model) openPosting() tea.Msg {
	if m.selected != nil && m.selected.URL != "" {
		openURL(m.selected.URL)
	}
	return nil
}

// openURL opens a URL in the default browser across platforms.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default: // linux, freebsd, etc.
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

// ── Update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case queueMsg:
		m.jobs = msg.jobs
		m.counts = msg.counts
		if m.cursor >= len(m.jobs) {
			m.cursor = len(m.jobs) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.err = nil
	case actionResultMsg:
		m.confirmReject = false
		m.confirmJobID = 0
		if msg.err != nil {
			// Non-fatal: show the error inline and stay put.
			m.actionErr = msg.err
		} else {
			m.actionErr = nil
			m.notice = fmt.Sprintf("job %d → %s", msg.id, msg.status)
			m.selected = nil
			m.lines = nil
			m.scrollOffset = 0
			return m, m.fetchQueue
		}
	case errMsg:
		m.err = msg
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// renderMarkdown renders text as terminal-styled markdown via glamour.
// Falls back to plain text splitting on error.
func renderMarkdown(text string, width int) []string {
	if width < 40 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.Split(text, "\n")
	}
	rendered, err := r.Render(text)
	if err != nil {
		return strings.Split(text, "\n")
	}
	// Trim trailing newlines that glamour adds.
	rendered = strings.TrimRight(rendered, "\n")
	return strings.Split(rendered, "\n")
}

// ── Key Handling ────────────────────────────────────────────────────────────

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Confirmation prompt active.
	if m.confirmReject {
		switch key {
		case "y":
			return m, m.setStatus(m.confirmJobID, db.StatusReject)
		case "n", "esc":
			m.confirmReject = false
			m.confirmJobID = 0
		}
		return m, nil
	}

	if m.selected != nil {
		return m.handleKeyDetail(key)
	}
	return m.handleKeyList(key)
}

func (m Model) handleKeyList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.jobs)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.jobs) {
			m.selected = &m.jobs[m.cursor]
			m.scrollOffset = 0
			desc := m.selected.Description
			if desc == "" {
				m.lines = []string{"(no description captured)"}
			} else {
				m.lines = renderMarkdown(desc, m.cw())
			}
		}
	case "s":
		if m.cursor < len(m.jobs) {
			m.actionErr = nil
			return m, m.setStatus(m.jobs[m.cursor].ID, db.StatusShortlist)
		}
	case "x":
		if m.cursor < len(m.jobs) {
			m.confirmReject = true
			m.confirmJobID = m.jobs[m.cursor].ID
			m.actionErr = nil
		}
	case "r":
		m.notice = ""
		return m, m.fetchQueue
	}
	return m, nil
}

func (m Model) handleKeyDetail(key string) (tea.Model, tea.Cmd) {
	avail := m.scrollHeight()
	switch key {
	case "up", "k":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
	case "down", "j":
		if m.scrollOffset < maxOffset(m.lines, avail) {
			m.scrollOffset++
		}
	case "u":
		m.scrollOffset -= avail / 2
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
	case "d":
		m.scrollOffset += avail / 2
		if m.scrollOffset > maxOffset(m.lines, avail) {
			m.scrollOffset = maxOffset(m.lines, avail)
		}
	case "s":
		m.actionErr = nil
		return m, m.setStatus(m.selected.ID, db.StatusShortlist)
	case "x":
		m.confirmReject = true
		m.confirmJobID = m.selected.ID
		m.actionErr = nil
	case "o":
		return m, m.openPosting
	case "esc":
		m.selected = nil
		m.lines = nil
		m.scrollOffset = 0
	}
	return m, nil
}

func maxOffset(lines []string, avail int) int {
	n := len(lines) - avail
	if n < 0 {
		return 0
	}
	return n
}

// ── Views ───────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var content string
	if m.err != nil {
		content = fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	} else if m.selected != nil {
		content = m.detailView()
	} else {
		content = m.listView()
	}
	return frameStyle.Render(content)
}

// ── Queue List ──────────────────────────────────────────────────────────────

func (m Model) listView() string {
	var b strings.Builder
	w := m.cw()

	b.WriteString(titleStyle.Render("JOB QUEUE"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n\n")

	// Status counters across the whole database.
	b.WriteString(fmt.Sprintf("  %s %d   %s %d   %s %d   %s %d   %s %d   %s %d\n",
		labelStyle.Render("new"), m.counts[db.StatusNew],
		statusStyle[db.StatusShortlist].Render("shortlist"), m.counts[db.StatusShortlist],
		statusStyle[db.StatusReviewed].Render("reviewed"), m.counts[db.StatusReviewed],
		statusStyle[db.StatusResumeWritten].Render("written"), m.counts[db.StatusResumeWritten],
		statusStyle[db.StatusApplied].Render("applied"), m.counts[db.StatusApplied],
		statusStyle[db.StatusReject].Render("rejected"), m.counts[db.StatusReject],
	))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	const (
		colID       = 6
		colCompany  = 22
		colTitle    = 42
		colLocation = 20
	)

	if len(m.jobs) == 0 {
		b.WriteString(dimStyle.Render("Queue is empty. Run a scrape or press r to refresh."))
		b.WriteString("\n")
	} else {
		header := "  " +
			headerStyle.Render(padRight("ID", colID)) +
			headerStyle.Render(padRight("COMPANY", colCompany)) +
			headerStyle.Render(padRight("TITLE", colTitle)) +
			headerStyle.Render(padRight("LOCATION", colLocation)) +
			headerStyle.Render("CAPTURED")
		b.WriteString(header)
		b.WriteString("\n")

		for i, job := range m.jobs {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}

			captured := job.CapturedAt
			if len(captured) > 16 {
				captured = captured[:16]
			}

			line := cursor +
				padRight(fmt.Sprintf("%d", job.ID), colID) +
				padRight(truncate(job.Company, colCompany-1), colCompany) +
				padRight(truncate(job.Title, colTitle-1), colTitle) +
				padRight(truncate(job.Location, colLocation-1), colLocation) +
				dimStyle.Render(captured)

			if i == m.cursor {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	if m.confirmReject {
		b.WriteString(promptStyle.Render(fmt.Sprintf("Reject job %d? (y/n)", m.confirmJobID)))
		return b.String()
	}
	if m.actionErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Action failed: %v", m.actionErr)))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(labelStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("j/k navigate  enter details  s shortlist  x reject  r refresh  q quit"))
	return b.String()
}

// ── Job Detail ──────────────────────────────────────────────────────────────

func (m Model) detailView() string {
	var b strings.Builder
	w := m.cw()
	job := m.selected

	b.WriteString(titleStyle.Render(fmt.Sprintf("JOB %d", job.ID)))
	b.WriteString(dimStyle.Render("  " + job.JobID))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	st, ok := statusStyle[job.Status]
	if !ok {
		st = dimStyle
	}
	kv := func(k, v string) {
		b.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(fmt.Sprintf("%-10s", k)), v))
	}
	kv("Status", st.Render(string(job.Status)))
	kv("Title", job.Title)
	kv("Company", job.Company)
	if job.Location != "" {
		kv("Location", job.Location)
	}
	if job.Source != "" {
		kv("Source", job.Source)
	}
	kv("URL", job.URL)
	kv("Captured", job.CapturedAt)
	if m.actionErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Action failed: %v", m.actionErr)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("DESCRIPTION"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	avail := m.scrollHeight()
	start, end := scrollWindow(m.lines, m.scrollOffset, avail)
	for _, line := range m.lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	if m.confirmReject {
		b.WriteString(promptStyle.Render(fmt.Sprintf("Reject job %d? (y/n)", m.confirmJobID)))
		return b.String()
	}
	pct := scrollPercent(m.lines, m.scrollOffset, avail)
	b.WriteString(dimStyle.Render(fmt.Sprintf("j/k scroll  u/d half-page  s shortlist  x reject  o open url  esc back  q quit%s", pct)))
	return b.String()
}

// ── Helpers ─────────────────────────────────────────────────────────────────

// cw returns content width (terminal width minus frame padding).
func (m Model) cw() int {
	w := m.width - pad*2
	if w < 40 {
		w = 76 // sensible default before first WindowSizeMsg
	}
	return w
}

func (m Model) scrollHeight() int {
	// Lines reserved for chrome: title, separators, metadata block, footer.
	h := m.height - 16
	if h < 1 {
		h = 1
	}
	return h
}

func scrollWindow(lines []string, offset, avail int) (int, int) {
	if avail < 1 {
		avail = 1
	}
	start := offset
	if start > len(lines) {
		start = len(lines)
	}
	end := start + avail
	if end > len(lines) {
		end = len(lines)
	}
	return start, end
}

func scrollPercent(lines []string, offset, avail int) string {
	if len(lines) <= avail {
		return ""
	}
	mx := len(lines) - avail
	if mx <= 0 {
		return ""
	}
	return fmt.Sprintf("  [%d%%]", offset*100/mx)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// padRight pads a plain string to n characters with spaces.
func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
