package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultTypingExpiry clears a peer's typing state when no repeat event
// arrives within this window.
const DefaultTypingExpiry = 4 * time.Second

// Manager owns one logical session's subscriptions: at most one active
// channel per topic, created with handlers fully registered before
// activation, and removed entirely on unsubscribe so a later subscribe
// builds a fresh registration.
type Manager struct {
	Self         string        // this session's identity; its own typing events are ignored
	TypingExpiry time.Duration // 0 means DefaultTypingExpiry

	transport Transport

	mu   sync.Mutex
	subs map[string]*Subscription
}

// Subscription is the live handle for one subscribed topic.
type Subscription struct {
	Topic string

	channel Channel
	typing  *typingState
}

func NewManager(transport Transport, self string) *Manager {
	return &Manager{
		Self:      self,
		transport: transport,
		subs:      make(map[string]*Subscription),
	}
}

func (m *Manager) typingExpiry() time.Duration {
	if m.TypingExpiry > 0 {
		return m.TypingExpiry
	}
	return DefaultTypingExpiry
}

// Subscribe activates a channel for topic with the given handlers. If the
// topic is already active this is a no-op returning the existing handle; a
// second handler set is never registered. On activation failure the topic is
// left inactive and a later Subscribe may retry.
func (m *Manager) Subscribe(ctx context.Context, topic string, handlers map[string]Handler) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.subs[topic]; ok {
		return existing, nil
	}

	channel := m.transport.Channel(topic)
	sub := &Subscription{
		Topic:   topic,
		channel: channel,
		typing:  newTypingState(m.typingExpiry()),
	}

	// Registration must complete before activation; activating first would
	// silently drop early events.
	for kind, handler := range handlers {
		channel.On(kind, handler)
	}
	channel.On(EventTyping, func(ev Event) {
		if ev.Sender == m.Self {
			return
		}
		sub.typing.touched(ev.Sender)
	})
	channel.On(EventStoppedTyping, func(ev Event) {
		if ev.Sender == m.Self {
			return
		}
		sub.typing.stopped(ev.Sender)
	})

	if err := channel.Activate(ctx); err != nil {
		return nil, fmt.Errorf("failed to activate channel %s: %w", topic, err)
	}

	m.subs[topic] = sub
	log.Printf("📡 Subscribed to %s", topic)
	return sub, nil
}

// Unsubscribe deactivates the topic's channel, clears typing state, and
// removes the subscription entirely. Unsubscribing an inactive topic is a
// no-op.
func (m *Manager) Unsubscribe(ctx context.Context, topic string) error {
	m.mu.Lock()
	sub, ok := m.subs[topic]
	if ok {
		delete(m.subs, topic)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	sub.typing.clear()
	if err := sub.channel.Deactivate(ctx); err != nil {
		return fmt.Errorf("failed to deactivate channel %s: %w", topic, err)
	}
	log.Printf("📴 Unsubscribed from %s", topic)
	return nil
}

// Subscribed reports whether the topic currently has an active subscription.
func (m *Manager) Subscribed(topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[topic]
	return ok
}

// NotifyTyping broadcasts a transient typing event on the topic, tagged with
// this session's identity. The topic must be subscribed.
func (m *Manager) NotifyTyping(ctx context.Context, topic string) error {
	return m.broadcastTyping(ctx, topic, EventTyping)
}

// StopTyping broadcasts a stopped-typing event on the topic.
func (m *Manager) StopTyping(ctx context.Context, topic string) error {
	return m.broadcastTyping(ctx, topic, EventStoppedTyping)
}

func (m *Manager) broadcastTyping(ctx context.Context, topic, kind string) error {
	m.mu.Lock()
	sub, ok := m.subs[topic]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("topic %s is not subscribed", topic)
	}
	payload := map[string]interface{}{"userId": m.Self}
	if err := sub.channel.Broadcast(ctx, kind, payload); err != nil {
		return fmt.Errorf("failed to broadcast %s on %s: %w", kind, topic, err)
	}
	return nil
}

// TypingPeer returns the identity currently typing on the topic, or "".
func (m *Manager) TypingPeer(topic string) string {
	m.mu.Lock()
	sub, ok := m.subs[topic]
	m.mu.Unlock()
	if !ok {
		return ""
	}
	return sub.typing.peer()
}
