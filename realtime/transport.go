// Package realtime manages the lifecycle of logical pub/sub subscriptions:
// one active channel per topic, handlers registered before activation, and an
// ephemeral typing-indicator sub-protocol layered on broadcast events.
package realtime

import "context"

// Event kinds used by the typing sub-protocol.
const (
	EventTyping        = "typing"
	EventStoppedTyping = "stopped_typing"
)

// Event is a single delivery on a channel.
type Event struct {
	Kind    string
	Sender  string
	Payload map[string]interface{}
}

// Handler receives events in the order the transport delivers them.
type Handler func(Event)

// Channel is one topic's handle on the underlying transport. Handlers must be
// registered via On before Activate; events arriving before activation are
// never delivered.
type Channel interface {
	On(kind string, h Handler)
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Broadcast(ctx context.Context, kind string, payload map[string]interface{}) error
}

// Transport creates channel handles for topics. Creating a handle has no
// side effects until the handle is activated.
type Transport interface {
	Channel(topic string) Channel
}
