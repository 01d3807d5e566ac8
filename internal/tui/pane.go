package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

// rowsPerJob is the height of one posting in a pane: title, subtitle, gap.
const rowsPerJob = 3

// pane is one scrollable column of postings with its own cursor.
type pane struct {
	title  string
	jobs   []model.JobPosting
	cursor int
	vp     viewport.Model
}

func newPane(title string, jobs []model.JobPosting) pane {
	return pane{title: title, jobs: jobs, vp: viewport.New(0, 0)}
}

func (p *pane) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
}

func (p *pane) move(delta int) {
	p.cursor = min(max(p.cursor+delta, 0), max(len(p.jobs)-1, 0))
}

// follow scrolls the viewport so the cursor row is visible. The content
// must already be rendered.
func (p *pane) follow() {
	top := p.cursor * rowsPerJob
	bottom := top + rowsPerJob - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

func (p pane) selected() (model.JobPosting, bool) {
	if len(p.jobs) == 0 {
		return model.JobPosting{}, false
	}
	return p.jobs[p.cursor], true
}

// replace swaps in the stored version of job if the pane lists it.
func (p *pane) replace(job model.JobPosting) {
	for i := range p.jobs {
		if p.jobs[i].ID == job.ID {
			p.jobs[i] = job
			return
		}
	}
}

func (p *pane) refresh(focused bool, unread func(model.JobPosting) bool) {
	if len(p.jobs) == 0 {
		p.vp.SetContent("  (공고 없음)")
		return
	}
	var b strings.Builder
	for i, j := range p.jobs {
		title, sub, marker := rowStyle, subtitleStyle, "  "
		if focused && i == p.cursor {
			title, sub, marker = selectedRowStyle, selectedSubtitleStyle, "> "
		}
		b.WriteString(marker + title.Render(j.Title))
		if unread(j) {
			b.WriteString(unreadStyle.Render(" ●"))
		}
		b.WriteString("\n" + marker + sub.Render(jobSubtitle(j)) + "\n")
		if i < len(p.jobs)-1 {
			b.WriteByte('\n')
		}
	}
	p.vp.SetContent(b.String())
}

// frame renders the pane header above its bordered viewport.
func (p pane) frame(focused bool) string {
	accent := mutedColor
	if focused {
		accent = accentColor
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Width(p.vp.Width + 2).
		Render(fmt.Sprintf("  %s (%d)", p.title, len(p.jobs)))
	body := boxStyle.BorderForeground(accent).Width(p.vp.Width).Render(p.vp.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func jobSubtitle(j model.JobPosting) string {
	parts := []string{j.Company}
	if j.Location != "" {
		parts = append(parts, j.Location)
	}
	parts = append(parts, string(j.Source))
	return strings.Join(parts, " · ")
}
