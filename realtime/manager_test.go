package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records channel creation and lets tests drive deliveries.
type fakeTransport struct {
	mu       sync.Mutex
	channels map[string][]*fakeChannel

	activateErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{channels: make(map[string][]*fakeChannel)}
}

func (t *fakeTransport) Channel(topic string) Channel {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := &fakeChannel{topic: topic, handlers: make(map[string][]Handler), activateErr: t.activateErr}
	t.channels[topic] = append(t.channels[topic], ch)
	return ch
}

// latest returns the most recently created channel for a topic.
func (t *fakeTransport) latest(topic string) *fakeChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	chans := t.channels[topic]
	if len(chans) == 0 {
		return nil
	}
	return chans[len(chans)-1]
}

func (t *fakeTransport) created(topic string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.channels[topic])
}

type fakeChannel struct {
	topic       string
	activateErr error

	mu          sync.Mutex
	handlers    map[string][]Handler
	active      bool
	activations int
	broadcasts  []Event
}

func (c *fakeChannel) On(kind string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		panic("handler registered after activation")
	}
	c.handlers[kind] = append(c.handlers[kind], h)
}

func (c *fakeChannel) Activate(ctx context.Context) error {
	if c.activateErr != nil {
		return c.activateErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.activations++
	return nil
}

func (c *fakeChannel) Deactivate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	return nil
}

func (c *fakeChannel) Broadcast(ctx context.Context, kind string, payload map[string]interface{}) error {
	c.mu.Lock()
	c.broadcasts = append(c.broadcasts, Event{Kind: kind, Payload: payload})
	c.mu.Unlock()
	return nil
}

// deliver simulates an inbound event from the transport.
func (c *fakeChannel) deliver(ev Event) {
	c.mu.Lock()
	active := c.active
	handlers := append([]Handler(nil), c.handlers[ev.Kind]...)
	c.mu.Unlock()
	if !active {
		return
	}
	for _, h := range handlers {
		h(ev)
	}
}

func (c *fakeChannel) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func TestSubscribeDeliversToHandlers(t *testing.T) {
	transport := newFakeTransport()
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	var got []Event
	_, err := manager.Subscribe(ctx, "pair:alice#bob", map[string]Handler{
		"message": func(ev Event) { got = append(got, ev) },
	})
	require.NoError(t, err)
	require.True(t, manager.Subscribed("pair:alice#bob"))

	ch := transport.latest("pair:alice#bob")
	require.NotNil(t, ch)
	ch.deliver(Event{Kind: "message", Sender: "bob", Payload: map[string]interface{}{"text": "hi"}})

	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Sender)
}

func TestSubscribeTwiceReturnsExistingHandle(t *testing.T) {
	transport := newFakeTransport()
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	delivered := 0
	handlers := map[string]Handler{"message": func(Event) { delivered++ }}

	first, err := manager.Subscribe(ctx, "topic", handlers)
	require.NoError(t, err)
	second, err := manager.Subscribe(ctx, "topic", handlers)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, transport.created("topic"), "no second channel may be created")

	// One registration set means one delivery per event
	transport.latest("topic").deliver(Event{Kind: "message", Sender: "bob"})
	assert.Equal(t, 1, delivered)
}

func TestActivationFailureIsRetryable(t *testing.T) {
	transport := newFakeTransport()
	transport.activateErr = errors.New("connection refused")
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "topic", nil)
	require.Error(t, err)
	assert.False(t, manager.Subscribed("topic"))

	transport.activateErr = nil
	_, err = manager.Subscribe(ctx, "topic", nil)
	require.NoError(t, err)
	assert.True(t, manager.Subscribed("topic"))
}

func TestUnsubscribeRemovesEverything(t *testing.T) {
	transport := newFakeTransport()
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	delivered := 0
	_, err := manager.Subscribe(ctx, "topic", map[string]Handler{
		"message": func(Event) { delivered++ },
	})
	require.NoError(t, err)

	first := transport.latest("topic")
	require.NoError(t, manager.Unsubscribe(ctx, "topic"))
	assert.False(t, manager.Subscribed("topic"))
	assert.False(t, first.isActive())

	// The old channel no longer delivers
	first.deliver(Event{Kind: "message", Sender: "bob"})
	assert.Equal(t, 0, delivered)

	// Unsubscribing again is a no-op
	require.NoError(t, manager.Unsubscribe(ctx, "topic"))

	// Resubscribing builds a fresh registration that delivers again
	_, err = manager.Subscribe(ctx, "topic", map[string]Handler{
		"message": func(Event) { delivered++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 2, transport.created("topic"))
	transport.latest("topic").deliver(Event{Kind: "message", Sender: "bob"})
	assert.Equal(t, 1, delivered)
}

func TestNotifyTypingRequiresSubscription(t *testing.T) {
	transport := newFakeTransport()
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	assert.Error(t, manager.NotifyTyping(ctx, "topic"))

	_, err := manager.Subscribe(ctx, "topic", nil)
	require.NoError(t, err)
	require.NoError(t, manager.NotifyTyping(ctx, "topic"))

	ch := transport.latest("topic")
	require.Len(t, ch.broadcasts, 1)
	assert.Equal(t, EventTyping, ch.broadcasts[0].Kind)
	assert.Equal(t, "alice", ch.broadcasts[0].Payload["userId"])

	require.NoError(t, manager.StopTyping(ctx, "topic"))
	require.Len(t, ch.broadcasts, 2)
	assert.Equal(t, EventStoppedTyping, ch.broadcasts[1].Kind)
}

func TestOwnTypingEventsAreIgnored(t *testing.T) {
	transport := newFakeTransport()
	manager := NewManager(transport, "alice")
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "topic", nil)
	require.NoError(t, err)
	ch := transport.latest("topic")

	// The broadcast loops back to the sender; it must not set the peer
	ch.deliver(Event{Kind: EventTyping, Sender: "alice"})
	assert.Equal(t, "", manager.TypingPeer("topic"))

	ch.deliver(Event{Kind: EventTyping, Sender: "bob"})
	assert.Equal(t, "bob", manager.TypingPeer("topic"))
}

func TestRegistryIsolatesSessions(t *testing.T) {
	transport := newFakeTransport()
	registry := NewSessionRegistry(transport)
	ctx := context.Background()

	alice := registry.For("alice")
	bob := registry.For("bob")
	assert.NotSame(t, alice, bob)
	assert.Same(t, alice, registry.For("alice"))

	_, err := alice.Subscribe(ctx, "topic", nil)
	require.NoError(t, err)
	assert.True(t, alice.Subscribed("topic"))
	assert.False(t, bob.Subscribed("topic"))
}
