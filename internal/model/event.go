package model

// EventType names a progress notification emitted by long-running operations.
type EventType string

const (
	EventDetailLoaded     EventType = "detail.loaded"
	EventDetailsCompleted EventType = "details.completed"
	EventDetailsStopped   EventType = "details.stopped"
	EventChatChunk        EventType = "chat.chunk"
	EventCrawlFinished    EventType = "crawl.finished"
)

// Event is one notification. Only the fields relevant to Type are set.
type Event struct {
	Type  EventType
	Job   *JobPosting // detail.loaded
	JobID string      // chat.chunk
	Chunk string      // chat.chunk
	Log   *CrawlLog   // crawl.finished
}

// Notifier receives progress events. Implementations must not block for long:
// chat chunks are delivered inline with the model stream.
type Notifier interface {
	Notify(ev Event) error
}
