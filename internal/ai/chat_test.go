package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/store"
)

// scriptedProvider records prompts and replays fixed chunks.
type scriptedProvider struct {
	chunks  []string
	err     error
	prompts []string
}

func (p *scriptedProvider) Stream(_ context.Context, prompt string, onChunk func(string)) error {
	p.prompts = append(p.prompts, prompt)
	for _, c := range p.chunks {
		onChunk(c)
	}
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var turnTime = time.Date(2026, 3, 2, 21, 30, 0, 0, time.UTC)

func newSession(t *testing.T, p StreamProvider) (*ChatSession, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.SaveJobs([]model.JobPosting{{
		ID:            "wanted-123",
		Source:        model.SourceWanted,
		Title:         "백엔드 개발자",
		Company:       "토스",
		Location:      "서울 강남구",
		Requirements:  &model.Requirements{Experience: "3년 이상"},
		DetailContent: "## 주요 업무\n결제 API 개발",
	}}))
	s := NewChatSession(p, mem, nil, discardLogger())
	s.now = func() time.Time { return turnTime }
	return s, mem
}

func TestSend_FirstTurnEmbedsContext(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"결제 ", "API를 ", "개발합니다."}}
	s, mem := newSession(t, p)

	var streamed []string
	turn, err := s.Send(context.Background(), "wanted-123", "주요 업무가 뭐야?", func(c string) {
		streamed = append(streamed, c)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"결제 ", "API를 ", "개발합니다."}, streamed)
	assert.Equal(t, "결제 API를 개발합니다.", turn.Response)

	require.Len(t, p.prompts, 1)
	prompt := p.prompts[0]
	for _, want := range []string{"채용공고 분석 전문가", "제목: 백엔드 개발자", "회사: 토스", "지역: 서울 강남구", "경력: 3년 이상", "결제 API 개발", "사용자 질문: 주요 업무가 뭐야?"} {
		assert.Contains(t, prompt, want)
	}

	stored, err := mem.GetJob("wanted-123")
	require.NoError(t, err)
	require.Len(t, stored.AIMessages, 2)
	assert.Equal(t, model.ChatMessage{Role: model.RoleUser, Content: "주요 업무가 뭐야?", Timestamp: turnTime}, stored.AIMessages[0])
	assert.Equal(t, model.ChatMessage{Role: model.RoleAssistant, Content: "결제 API를 개발합니다.", Timestamp: turnTime}, stored.AIMessages[1])
	assert.Equal(t, stored.AIMessages, turn.Job.AIMessages)
}

func TestSend_LaterTurnsSendPromptOnly(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"네."}}
	s, mem := newSession(t, p)

	_, err := s.Send(context.Background(), "wanted-123", "첫 질문", nil)
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "wanted-123", "연봉은?", nil)
	require.NoError(t, err)

	require.Len(t, p.prompts, 2)
	assert.Equal(t, "연봉은?", p.prompts[1])

	stored, _ := mem.GetJob("wanted-123")
	require.Len(t, stored.AIMessages, 4)
	assert.Equal(t, "연봉은?", stored.AIMessages[2].Content)
}

func TestSend_StreamErrorPersistsNothing(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"부분 응답"}, err: errors.New("connection reset")}
	s, mem := newSession(t, p)

	var streamed int
	_, err := s.Send(context.Background(), "wanted-123", "질문", func(string) { streamed++ })
	require.Error(t, err)
	assert.Equal(t, 1, streamed, "fragments are forwarded even when the stream later fails")

	stored, _ := mem.GetJob("wanted-123")
	assert.Empty(t, stored.AIMessages)
}

func TestSend_EmptyResponse(t *testing.T) {
	s, mem := newSession(t, &scriptedProvider{chunks: []string{" ", "\n"}})

	_, err := s.Send(context.Background(), "wanted-123", "질문", nil)
	require.ErrorIs(t, err, ErrEmptyResponse)

	stored, _ := mem.GetJob("wanted-123")
	assert.Empty(t, stored.AIMessages)
}

func TestSend_UnknownJob(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"x"}}
	s, _ := newSession(t, p)

	_, err := s.Send(context.Background(), "saramin-999", "질문", nil)
	require.ErrorIs(t, err, model.ErrJobNotFound)
	assert.Empty(t, p.prompts, "no model call for a missing posting")
}

func TestFirstTurnOmitsMissingFields(t *testing.T) {
	p := &scriptedProvider{chunks: []string{"ok"}}
	mem := store.NewMemoryStore()
	require.NoError(t, mem.SaveJobs([]model.JobPosting{{ID: "jumpit-1", Title: "플랫폼 엔지니어", Company: "점핏"}}))
	s := NewChatSession(p, mem, nil, discardLogger())

	_, err := s.Send(context.Background(), "jumpit-1", "어때?", nil)
	require.NoError(t, err)
	assert.NotContains(t, p.prompts[0], "지역:")
	assert.NotContains(t, p.prompts[0], "경력:")
	assert.NotContains(t, p.prompts[0], "상세 내용:")
}

func TestMarkReadAndUnread(t *testing.T) {
	s, _ := newSession(t, &scriptedProvider{chunks: []string{"답변"}})

	turn, err := s.Send(context.Background(), "wanted-123", "질문", nil)
	require.NoError(t, err)
	assert.True(t, Unread(turn.Job))

	s.now = func() time.Time { return turnTime.Add(time.Minute) }
	read, err := s.MarkRead("wanted-123")
	require.NoError(t, err)
	require.NotNil(t, read.AILastReadAt)
	assert.False(t, Unread(read))

	_, err = s.MarkRead("missing")
	assert.ErrorIs(t, err, model.ErrJobNotFound)
}
