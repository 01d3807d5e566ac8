package notifier

import (
	"fmt"
	"io"
	"sync"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier prints human-readable progress to a writer. Chat chunks are
// written as-is so a streamed answer appears incrementally.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier returns a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (c *ConsoleNotifier) Notify(ev model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch ev.Type {
	case model.EventChatChunk:
		_, err = io.WriteString(c.out, ev.Chunk)
	case model.EventDetailLoaded:
		if ev.Job != nil {
			_, err = fmt.Fprintf(c.out, "✓ %s | %s\n", ev.Job.Company, ev.Job.Title)
		}
	case model.EventDetailsCompleted:
		_, err = fmt.Fprintln(c.out, "상세 정보 수집 완료")
	case model.EventDetailsStopped:
		_, err = fmt.Fprintln(c.out, "상세 정보 수집 중지됨")
	case model.EventCrawlFinished:
		if ev.Log != nil {
			_, err = fmt.Fprintf(c.out, "[%s] %s: %d건, %d페이지 (%dms)\n",
				ev.Log.Source, ev.Log.Status, ev.Log.TotalItems, ev.Log.PagesScraped, ev.Log.Duration)
		}
	}
	if err != nil {
		return fmt.Errorf("write %s event: %w", ev.Type, err)
	}
	return nil
}
