package model

type EventType string

const (
	EventChunk    EventType = "chunk"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// StreamEvent is one unit of a streamed answer. A stream is zero or more
// chunk events followed by exactly one complete or error event; the channel
// carrying the events is closed after the terminal event.
type StreamEvent struct {
	Type    EventType
	Content string           // set for chunk events
	Sources []SourceCitation // set for complete events, never nil
	Message string           // set for error events, user-safe
}

func ChunkEvent(content string) StreamEvent {
	return StreamEvent{Type: EventChunk, Content: content}
}

func CompleteEvent(sources []SourceCitation) StreamEvent {
	if sources == nil {
		sources = []SourceCitation{}
	}
	return StreamEvent{Type: EventComplete, Sources: sources}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}
