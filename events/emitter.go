// Package events provides the state-change announcement channel between the
// engine and its consumers. Downstream layers subscribe to named topics and
// re-fetch the slices they render; the engine stays free of UI coupling.
package events

import "sync"

// Topics published by the engine.
const (
	TopicFriendsChanged       = "friends.changed"
	TopicRequestsChanged      = "requests.changed"
	TopicMatchesChanged       = "matches.changed"
	TopicNotificationsChanged = "notifications.changed"
)

// Event carries a topic plus an optional payload (e.g. the affected user ID).
type Event struct {
	Topic   string
	Payload interface{}
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Emitter is a minimal topic-keyed observer registry, safe for concurrent use.
type Emitter struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers h for topic and returns a cancel function.
func (e *Emitter) Subscribe(topic string, h Handler) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers[topic] == nil {
		e.handlers[topic] = make(map[int]Handler)
	}
	id := e.nextID
	e.nextID++
	e.handlers[topic][id] = h
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers[topic], id)
	}
}

// Publish delivers the event to every handler subscribed to its topic.
func (e *Emitter) Publish(topic string, payload interface{}) {
	e.mu.RLock()
	subs := make([]Handler, 0, len(e.handlers[topic]))
	for _, h := range e.handlers[topic] {
		subs = append(subs, h)
	}
	e.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, h := range subs {
		h(ev)
	}
}
