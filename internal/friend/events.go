package friend

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRequestSent     EventType = "request.sent"
	EventRequestAccepted EventType = "request.accepted"
	EventRequestRemoved  EventType = "request.removed"
	EventFriendRemoved   EventType = "friend.removed"
)

// Event describes a committed change. Actor made the change and Target is the other player.
type Event struct {
	Type   EventType `json:"type"`
	Actor  uuid.UUID `json:"actor"`
	Target uuid.UUID `json:"target"`
	At     time.Time `json:"at"`
}

// Publisher delivers events to interested players. Publish must not block.
type Publisher interface {
	Publish(Event)
}

type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) {
	f(e)
}

// NopPublisher discards every event.
var NopPublisher Publisher = PublisherFunc(func(Event) {})
