package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// ErrEmptyResponse is returned when the model streamed no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Turn is the result of one successful exchange.
type Turn struct {
	Response string
	Job      model.JobPosting // the posting with both new messages appended
}

// ChatSession runs conversations about stored postings.
type ChatSession struct {
	provider StreamProvider
	store    model.JobStore
	tmpl     *template.Template
	logger   *slog.Logger
	now      func() time.Time
}

// NewChatSession creates a session. A nil tmpl uses FirstTurnTemplate.
func NewChatSession(provider StreamProvider, store model.JobStore, tmpl *template.Template, logger *slog.Logger) *ChatSession {
	if tmpl == nil {
		tmpl = FirstTurnTemplate
	}
	return &ChatSession{
		provider: provider,
		store:    store,
		tmpl:     tmpl,
		logger:   logger,
		now:      time.Now,
	}
}

// Send asks prompt about the posting jobID. The first turn of a conversation
// embeds the posting's context; later turns send the prompt alone. Every
// fragment is passed to onChunk as it arrives. The user and assistant
// messages are persisted only after the stream completes with a non-empty
// response.
func (c *ChatSession) Send(ctx context.Context, jobID, prompt string, onChunk func(string)) (Turn, error) {
	job, err := c.store.GetJob(jobID)
	if err != nil {
		return Turn{}, err
	}

	fullPrompt := prompt
	if len(job.AIMessages) == 0 {
		if fullPrompt, err = c.renderFirstTurn(job, prompt); err != nil {
			return Turn{}, err
		}
	}

	var response strings.Builder
	err = c.provider.Stream(ctx, fullPrompt, func(chunk string) {
		response.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	if err != nil {
		return Turn{}, fmt.Errorf("chat about %s: %w", jobID, err)
	}
	text := response.String()
	if strings.TrimSpace(text) == "" {
		return Turn{}, fmt.Errorf("chat about %s: %w", jobID, ErrEmptyResponse)
	}

	at := c.now()
	updated, err := c.store.UpdateJob(jobID, func(j *model.JobPosting) {
		j.AIMessages = append(j.AIMessages,
			model.ChatMessage{Role: model.RoleUser, Content: prompt, Timestamp: at},
			model.ChatMessage{Role: model.RoleAssistant, Content: text, Timestamp: at},
		)
	})
	if err != nil {
		return Turn{}, fmt.Errorf("saving chat about %s: %w", jobID, err)
	}

	c.logger.Info("chat turn saved",
		"job", jobID,
		"messages", len(updated.AIMessages),
		"response_chars", len(text),
	)
	return Turn{Response: text, Job: updated}, nil
}

// MarkRead records that the conversation of jobID has been read.
func (c *ChatSession) MarkRead(jobID string) (model.JobPosting, error) {
	at := c.now()
	return c.store.UpdateJob(jobID, func(j *model.JobPosting) {
		j.AILastReadAt = &at
	})
}

// Unread reports whether the posting has assistant replies newer than its last read.
func Unread(job model.JobPosting) bool {
	if len(job.AIMessages) == 0 {
		return false
	}
	last := job.AIMessages[len(job.AIMessages)-1]
	if last.Role != model.RoleAssistant {
		return false
	}
	return job.AILastReadAt == nil || last.Timestamp.After(*job.AILastReadAt)
}

type firstTurnData struct {
	Title      string
	Company    string
	Location   string
	Experience string
	Detail     string
	Question   string
}

func (c *ChatSession) renderFirstTurn(job model.JobPosting, question string) (string, error) {
	data := firstTurnData{
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
		Detail:   strings.TrimSpace(job.DetailContent),
		Question: question,
	}
	if job.Requirements != nil {
		data.Experience = job.Requirements.Experience
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
