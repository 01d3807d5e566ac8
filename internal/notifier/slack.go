package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts crawl-run and enrichment summaries to a Slack channel via
// Incoming Webhooks. Per-record and chat events are ignored.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts summaries to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends a Block Kit message for summary events.
func (s *SlackNotifier) Notify(ev model.Event) error {
	payload, ok := buildPayload(ev)
	if !ok {
		return nil
	}
	if err := s.send(payload); err != nil {
		s.logger.Error("slack notification failed", "event", ev.Type, "error", err)
		return err
	}
	s.logger.Info("slack message sent", "event", ev.Type)
	return nil
}

func (s *SlackNotifier) send(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample crawl summary to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	return n.Notify(model.Event{
		Type: model.EventCrawlFinished,
		Log: &model.CrawlLog{
			ID:           "test-001",
			Source:       model.SourceWanted,
			StartedAt:    now.Add(-2 * time.Second),
			CompletedAt:  &now,
			Duration:     2000,
			TotalItems:   1,
			PagesScraped: 1,
			Status:       model.CrawlSuccess,
		},
	})
}

var statusEmoji = map[model.CrawlStatus]string{
	model.CrawlSuccess: "✅",
	model.CrawlPartial: "⚠️",
	model.CrawlFailed:  "❌",
}

func buildPayload(ev model.Event) (slackPayload, bool) {
	switch ev.Type {
	case model.EventCrawlFinished:
		if ev.Log == nil {
			return slackPayload{}, false
		}
		return crawlPayload(*ev.Log), true
	case model.EventDetailsCompleted:
		return textPayload("📄 상세 정보 수집이 완료되었습니다."), true
	case model.EventDetailsStopped:
		return textPayload("⏹ 상세 정보 수집이 중지되었습니다."), true
	}
	return slackPayload{}, false
}

func crawlPayload(l model.CrawlLog) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("%s %s 크롤링 %s", statusEmoji[l.Status], l.Source, l.Status)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Items:*\n%d", l.TotalItems)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Pages:*\n%d", l.PagesScraped)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Started:*\n" + l.StartedAt.Format(time.RFC1123)},
				{Type: "mrkdwn", Text: "*Duration:*\n" + (time.Duration(l.Duration) * time.Millisecond).String()},
			},
		},
	}
	if l.Error != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Error:* " + l.Error},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}

func textPayload(text string) slackPayload {
	return slackPayload{Blocks: []slackBlock{
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: text}},
	}}
}
