package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

// detailLoadTimeout bounds one detail fetch started from the browser.
const detailLoadTimeout = 2 * time.Minute

var (
	accentColor = lipgloss.Color("39")
	mutedColor  = lipgloss.Color("240")
	selectedBg  = lipgloss.Color("24")

	boxStyle              = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	rowStyle              = lipgloss.NewStyle().Bold(true)
	selectedRowStyle      = rowStyle.Foreground(lipgloss.Color("15")).Background(selectedBg)
	subtitleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(selectedBg)
	unreadStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle            = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Width(12)
	bodyStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hintStyle             = subtitleStyle.Italic(true)
	dividerStyle          = lipgloss.NewStyle().Foreground(mutedColor)
	userStyle             = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	assistantStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle           = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
)

// BrowserOptions wires optional behaviour into the browser.
type BrowserOptions struct {
	// Filter selects the postings shown in the right pane. Nil matches all.
	Filter model.JobFilter
	// LoadDetail fetches and stores the detail of a posting opened without one.
	LoadDetail func(ctx context.Context, job model.JobPosting) (model.JobPosting, error)
	// MarkRead is called when a posting with unread AI replies is opened.
	MarkRead func(jobID string) (model.JobPosting, error)
	// Unread reports whether a posting has unread AI replies.
	Unread func(job model.JobPosting) bool
}

type detailLoadedMsg struct {
	job model.JobPosting
	err error
}

type markedReadMsg struct {
	job model.JobPosting
	err error
}

// browserModel shows every posting on the left and the filtered ones on the
// right. Enter opens the focused posting full screen.
type browserModel struct {
	panes   [2]pane
	focus   int
	width   int
	height  int
	ready   bool
	opts    BrowserOptions
	showing bool // detail page open
	detail  detailView
}

func newBrowserModel(jobs []model.JobPosting, opts BrowserOptions) browserModel {
	matched := jobs
	if opts.Filter != nil {
		matched = nil
		for _, j := range jobs {
			if opts.Filter.Match(j) {
				matched = append(matched, j)
			}
		}
	}
	// The panes keep separate copies so a write-back updates both consistently.
	return browserModel{
		panes: [2]pane{
			newPane("전체 공고", append([]model.JobPosting(nil), jobs...)),
			newPane("필터 결과", append([]model.JobPosting(nil), matched...)),
		},
		opts: opts,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case detailLoadedMsg:
		m.detail.loading = false
		m.detail.err = ""
		if msg.err != nil {
			m.detail.err = fmt.Sprintf("상세 정보 로드 실패: %v", msg.err)
		} else {
			m.detail.job = msg.job
			m.replace(msg.job)
		}
		m.detail.refresh(m.width)

	case markedReadMsg:
		if msg.err == nil {
			m.replace(msg.job)
			if m.detail.job.ID == msg.job.ID {
				m.detail.job.AILastReadAt = msg.job.AILastReadAt
			}
		}

	case tea.KeyMsg:
		if m.showing {
			return m.detailKey(msg)
		}
		return m.listKey(msg)
	}
	return m, nil
}

func (m browserModel) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.focus = 1 - m.focus
		m.refresh()
	case "up", "k":
		m.step(-1)
	case "down", "j":
		m.step(1)
	case "enter":
		return m.open()
	default:
		// pgup/pgdn/home/end scroll the focused pane.
		var cmd tea.Cmd
		p := &m.panes[m.focus]
		p.vp, cmd = p.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browserModel) detailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.showing = false
		m.refresh()
	case "o":
		openURL(m.detail.job.URL)
	case "r":
		if m.detail.job.HasDetail() {
			m.detail.expanded = !m.detail.expanded
			m.detail.refresh(m.width)
			m.detail.vp.SetYOffset(0)
		}
	default:
		var cmd tea.Cmd
		m.detail.vp, cmd = m.detail.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) step(delta int) {
	p := &m.panes[m.focus]
	p.move(delta)
	m.refresh()
	p.follow()
}

func (m browserModel) open() (tea.Model, tea.Cmd) {
	job, ok := m.panes[m.focus].selected()
	if !ok {
		return m, nil
	}
	m.showing = true
	m.detail = detailView{job: job, vp: viewport.New(m.width-4, m.height-4)}

	var cmds []tea.Cmd
	if m.opts.LoadDetail != nil && !job.HasDetail() {
		m.detail.loading = true
		load := m.opts.LoadDetail
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), detailLoadTimeout)
			defer cancel()
			loaded, err := load(ctx, job)
			return detailLoadedMsg{job: loaded, err: err}
		})
	}
	if m.opts.MarkRead != nil && m.unread(job) {
		mark := m.opts.MarkRead
		cmds = append(cmds, func() tea.Msg {
			read, err := mark(job.ID)
			return markedReadMsg{job: read, err: err}
		})
	}
	m.detail.refresh(m.width)
	return m, tea.Batch(cmds...)
}

func (m browserModel) unread(job model.JobPosting) bool {
	return m.opts.Unread != nil && m.opts.Unread(job)
}

// replace writes an updated posting back into both panes.
func (m *browserModel) replace(job model.JobPosting) {
	for i := range m.panes {
		m.panes[i].replace(job)
	}
	m.refresh()
}

func (m *browserModel) refresh() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.focus, m.unread)
	}
}

// resize splits the width between the panes (two border columns each, one
// gap) and leaves four rows for the header, borders and status bar.
func (m *browserModel) resize(width, height int) {
	m.width, m.height = width, height
	paneWidth := max((width-5)/2, 20)
	paneHeight := max(height-4, 5)
	for i := range m.panes {
		m.panes[i].resize(paneWidth, paneHeight)
	}
	m.ready = true
	m.refresh()
	if m.showing {
		m.detail.vp.Width = width - 4
		m.detail.vp.Height = height - 4
		m.detail.refresh(width)
	}
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showing {
		return m.detail.view(m.width)
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panes[0].frame(m.focus == 0), " ", m.panes[1].frame(m.focus == 1))
	counts := fmt.Sprintf("%d total | %d matched", len(m.panes[0].jobs), len(m.panes[1].jobs))
	return panes + "\n" + statusBar(m.width, counts,
		"←/→/Tab", "switch", "↑/↓", "cursor", "Enter", "detail", "q", "quit")
}

// statusBar renders lead followed by key/description pairs.
func statusBar(width int, lead string, keys ...string) string {
	parts := make([]string, 0, len(keys)/2+1)
	if lead != "" {
		parts = append(parts, lead+"   ")
	}
	for i := 0; i+1 < len(keys); i += 2 {
		parts = append(parts, keys[i]+" "+keys[i+1])
	}
	return statusStyle.Width(width).Render(strings.Join(parts, "  "))
}

// wordWrap wraps each line of text to width display cells. Line breaks in
// text are kept.
func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if lipgloss.Width(line)+1+lipgloss.Width(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// openURL hands url to the platform opener and does not wait for it.
func openURL(url string) {
	var name string
	args := []string{url}
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start", url}
	default:
		return
	}
	_ = exec.Command(name, args...).Start()
}

// RunBrowser opens the full-screen posting browser.
func RunBrowser(jobs []model.JobPosting, opts BrowserOptions) error {
	p := tea.NewProgram(newBrowserModel(jobs, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
