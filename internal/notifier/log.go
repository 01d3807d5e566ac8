package notifier

import (
	"log/slog"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes progress events to the given logger as structured messages.
// Chat chunks are logged at debug level only.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each event via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(ev model.Event) error {
	switch ev.Type {
	case model.EventDetailLoaded:
		if ev.Job != nil {
			n.logger.Info("detail loaded", "job_id", ev.Job.ID, "company", ev.Job.Company, "title", ev.Job.Title)
		}
	case model.EventDetailsCompleted:
		n.logger.Info("detail enrichment completed")
	case model.EventDetailsStopped:
		n.logger.Info("detail enrichment stopped")
	case model.EventChatChunk:
		n.logger.Debug("chat chunk", "job_id", ev.JobID, "chars", len(ev.Chunk))
	case model.EventCrawlFinished:
		if ev.Log != nil {
			args := []any{
				"source", ev.Log.Source,
				"status", ev.Log.Status,
				"items", ev.Log.TotalItems,
				"pages", ev.Log.PagesScraped,
				"duration_ms", ev.Log.Duration,
			}
			if ev.Log.Error != "" {
				args = append(args, "error", ev.Log.Error)
			}
			n.logger.Info("crawl finished", args...)
		}
	default:
		n.logger.Debug("unhandled event", "type", ev.Type)
	}
	return nil
}
