package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobscout/internal/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_SelectSource(t *testing.T) {
	var m tea.Model = newPickerModel(model.AllSources)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))

	if cmd == nil {
		t.Fatal("enter should quit the picker")
	}
	if got := m.(pickerModel).choice(); got != "saramin" {
		t.Errorf("choice = %q, want saramin", got)
	}
}

func TestPicker_DefaultsToAllAndQuit(t *testing.T) {
	var m tea.Model = newPickerModel(model.AllSources)
	if !strings.Contains(m.View(), "> all") {
		t.Errorf("cursor should start on all:\n%s", m.View())
	}
	m, _ = m.Update(key("q"))
	if got := m.(pickerModel).choice(); got != "" {
		t.Errorf("choice after quit = %q, want empty", got)
	}
}

func TestLoader_DoneAndCancel(t *testing.T) {
	boom := errors.New("boom")
	m := newLoaderModel(context.Background(), "크롤링 중", func(context.Context) error { return boom })

	msg := m.doRun()()
	next, _ := m.Update(msg)
	if got := next.(loaderModel).err; !errors.Is(got, boom) {
		t.Errorf("err = %v, want boom", got)
	}

	m = newLoaderModel(context.Background(), "크롤링 중", func(context.Context) error { return nil })
	if !strings.Contains(m.View(), "크롤링 중...") {
		t.Errorf("view = %q", m.View())
	}
	next, _ = m.Update(key("ctrl+c"))
	if got := next.(loaderModel).err; !errors.Is(got, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", got)
	}
	if m.ctx.Err() == nil {
		t.Error("ctrl+c should cancel the run context")
	}
}

type titleFilter string

func (f titleFilter) Match(j model.JobPosting) bool { return strings.Contains(j.Title, string(f)) }

func sampleJobs() []model.JobPosting {
	return []model.JobPosting{
		{ID: "wanted-1", Source: model.SourceWanted, Title: "Go 백엔드", Company: "토스", Location: "서울 강남구", CrawledAt: time.Now()},
		{ID: "jumpit-2", Source: model.SourceJumpit, Title: "프론트엔드", Company: "당근", CrawledAt: time.Now(), DetailContent: "## 주요 업무\nUI 개발"},
	}
}

func TestBrowser_FilterSplitsPanes(t *testing.T) {
	m := newBrowserModel(sampleJobs(), BrowserOptions{Filter: titleFilter("Go")})
	if len(m.panes[0].jobs) != 2 || len(m.panes[1].jobs) != 1 {
		t.Fatalf("panes = %d/%d, want 2/1", len(m.panes[0].jobs), len(m.panes[1].jobs))
	}

	var tm tea.Model = m
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := tm.View()
	for _, want := range []string{"전체 공고 (2)", "필터 결과 (1)", "토스 · 서울 강남구 · wanted"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowser_CursorStaysInFocusedPane(t *testing.T) {
	var jobs []model.JobPosting
	for i := 1; i <= 5; i++ {
		jobs = append(jobs, model.JobPosting{ID: fmt.Sprintf("wanted-%d", i), Source: model.SourceWanted, Title: fmt.Sprintf("공고 %d", i), Company: "토스"})
	}

	var tm tea.Model = newBrowserModel(jobs, BrowserOptions{Filter: titleFilter("1")})
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	for range 10 {
		tm, _ = tm.Update(key("down"))
	}
	bm := tm.(browserModel)
	if bm.panes[0].cursor != 4 {
		t.Fatalf("left cursor = %d, want 4", bm.panes[0].cursor)
	}
	if bm.panes[0].vp.YOffset == 0 {
		t.Error("left pane should scroll to keep the cursor visible")
	}

	tm, _ = tm.Update(key("tab"))
	tm, _ = tm.Update(key("down"))
	bm = tm.(browserModel)
	if bm.focus != 1 || bm.panes[1].cursor != 0 {
		t.Errorf("focus=%d right cursor=%d, want 1/0", bm.focus, bm.panes[1].cursor)
	}
	if bm.panes[0].cursor != 4 {
		t.Error("moving the right pane should not move the left cursor")
	}

	tm, _ = tm.Update(key("tab"))
	for range 10 {
		tm, _ = tm.Update(key("up"))
	}
	bm = tm.(browserModel)
	if bm.panes[0].cursor != 0 || bm.panes[0].vp.YOffset != 0 {
		t.Errorf("cursor=%d offset=%d, want 0/0", bm.panes[0].cursor, bm.panes[0].vp.YOffset)
	}
}

func TestBrowser_OpenLoadsMissingDetail(t *testing.T) {
	var loaded string
	opts := BrowserOptions{
		LoadDetail: func(_ context.Context, j model.JobPosting) (model.JobPosting, error) {
			loaded = j.ID
			j.DetailContent = "## 자격 요건\nGo 3년"
			return j, nil
		},
	}

	var tm tea.Model = newBrowserModel(sampleJobs(), opts)
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	tm, cmd := tm.Update(key("enter"))
	if cmd == nil {
		t.Fatal("opening a posting without detail should start a load")
	}
	if !tm.(browserModel).detail.loading {
		t.Error("detail should be marked loading")
	}

	tm, _ = tm.Update(cmd())
	bm := tm.(browserModel)
	if loaded != "wanted-1" || bm.detail.loading {
		t.Fatalf("loaded=%q loading=%v", loaded, bm.detail.loading)
	}
	if !bm.panes[0].jobs[0].HasDetail() {
		t.Error("loaded detail should be written back to the list")
	}

	tm, _ = tm.Update(key("r"))
	if !strings.Contains(tm.(browserModel).detail.render(120), "Go 3년") {
		t.Error("r should reveal the detail content")
	}

	tm, _ = tm.Update(key("esc"))
	if tm.(browserModel).showing {
		t.Error("esc should return to the list")
	}
}

func TestBrowser_OpenMarksUnreadRead(t *testing.T) {
	jobs := sampleJobs()
	jobs[1].AIMessages = []model.ChatMessage{
		{Role: model.RoleUser, Content: "질문", Timestamp: time.Now()},
		{Role: model.RoleAssistant, Content: "답변", Timestamp: time.Now()},
	}
	var marked string
	opts := BrowserOptions{
		Unread: func(j model.JobPosting) bool { return len(j.AIMessages) > 0 && j.AILastReadAt == nil },
		MarkRead: func(id string) (model.JobPosting, error) {
			marked = id
			j := jobs[1]
			now := time.Now()
			j.AILastReadAt = &now
			return j, nil
		},
	}

	var tm tea.Model = newBrowserModel(jobs, opts)
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(tm.View(), "●") {
		t.Error("unread marker missing from list")
	}
	tm, _ = tm.Update(key("down"))
	tm, cmd := tm.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a mark-read command")
	}
	tm, _ = tm.Update(cmd())

	if marked != "jumpit-2" {
		t.Errorf("marked = %q", marked)
	}
	bm := tm.(browserModel)
	if bm.panes[0].jobs[1].AILastReadAt == nil {
		t.Error("read time should be written back to the list")
	}
	if !strings.Contains(bm.detail.render(120), "답변") {
		t.Error("detail should show the conversation")
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("하나 둘 셋 넷\n\n다섯", 7)
	want := "하나 둘\n셋 넷\n\n다섯"
	if got != want {
		t.Errorf("wordWrap = %q, want %q", got, want)
	}
}
