package core

// EventType represents the kind of change behind an event.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to the profile's persisted state.
//
// Topic is a slash-separated path such as "document", "articles/<id>",
// "notes/<id>", "shelves/<id>", "logs", "usage", "interests", "config" or
// "feeds". Subscribers filter topics with glob patterns.
type Event struct {
	Type      EventType
	Topic     string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and the lifecycle event contract).
func (e Event) String() string {
	return string(e.Type) + " " + e.Topic
}
