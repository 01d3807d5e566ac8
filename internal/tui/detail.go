package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// detailView is the full-screen page of one posting.
type detailView struct {
	job      model.JobPosting
	loading  bool
	err      string
	expanded bool // detail content shown
	vp       viewport.Model
}

func (d *detailView) refresh(width int) {
	d.vp.SetContent(d.render(width))
}

// facts lists the label/value lines shown under the title; empty values are left out.
func (d detailView) facts() [][2]string {
	j := d.job
	var facts [][2]string
	add := func(label, value string) {
		if value != "" {
			facts = append(facts, [2]string{label, value})
		}
	}
	add("ID", j.ID)
	if r := j.Requirements; r != nil {
		add("경력", r.Experience)
		add("학력", r.Education)
		add("고용 형태", r.EmploymentType)
	}
	add("수집 시각", j.CrawledAt.Local().Format(timeLayout))
	if j.DetailLoadedAt != nil {
		add("상세 수집", j.DetailLoadedAt.Local().Format(timeLayout))
	}
	add("URL", j.URL)
	return facts
}

func (d detailView) render(width int) string {
	wrap := max(width-8, 20)
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.job.Title) + "\n")
	b.WriteString(subtitleStyle.Render(jobSubtitle(d.job)) + "\n\n")
	for _, f := range d.facts() {
		b.WriteString(labelStyle.Render(f[0]) + f[1] + "\n")
	}
	if d.err != "" {
		b.WriteString("\n" + errorStyle.Render("⚠ "+d.err) + "\n")
	}

	b.WriteByte('\n')
	switch {
	case d.job.HasDetail() && d.expanded:
		b.WriteString(section("상세 내용", wrap) + bodyStyle.Render(wordWrap(d.job.DetailContent, wrap)) + "\n")
	case d.job.HasDetail():
		b.WriteString(hintStyle.Render("  r 키로 상세 내용 보기") + "\n")
	case d.loading:
		b.WriteString(hintStyle.Render("  상세 정보를 불러오는 중...") + "\n")
	}

	if len(d.job.AIMessages) > 0 {
		b.WriteString("\n" + section("AI 대화", wrap))
		for _, msg := range d.job.AIMessages {
			who := userStyle.Render("나")
			if msg.Role == model.RoleAssistant {
				who = assistantStyle.Render("AI")
			}
			b.WriteString(who + " " + hintStyle.Render(msg.Timestamp.Local().Format(timeLayout)) + "\n")
			b.WriteString(bodyStyle.Render(wordWrap(msg.Content, wrap)) + "\n\n")
		}
	}
	return b.String()
}

func (d detailView) view(width int) string {
	heading := titleStyle.Render("공고 상세")
	if d.loading {
		heading += hintStyle.Render("  (loading...)")
	}
	hints := []string{"o", "open URL", "esc", "back", "↑/↓", "scroll", "q", "quit"}
	if d.job.HasDetail() {
		hints = append([]string{"r", "detail"}, hints...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		boxStyle.BorderForeground(accentColor).Width(width-2).Render(d.vp.View()),
		statusBar(width, "", hints...),
	)
}

// section renders a labelled divider that fills width.
func section(label string, width int) string {
	head := "── " + label + " "
	return dividerStyle.Render(head+strings.Repeat("─", max(width-lipgloss.Width(head), 3))) + "\n\n"
}
