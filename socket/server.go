// Package socket adapts the socket.io server to the realtime transport
// boundary: topics map to rooms, broadcasts fan out to room members and to
// in-process channel handlers.
package socket

import (
	"context"
	"log"
	"sync"

	"mingle_server/realtime"

	socketio "github.com/googollee/go-socket.io"
)

// Server hosts the socket.io endpoint and implements realtime.Transport.
type Server struct {
	io *socketio.Server

	mu     sync.Mutex
	active map[string][]*channel // activated channels by topic
}

// NewServer initializes the socket.io server and its event surface.
func NewServer() *Server {
	s := &Server{
		io:     socketio.NewServer(nil),
		active: make(map[string][]*channel),
	}

	s.io.OnConnect("/", func(conn socketio.Conn) error {
		log.Println("✅ Socket connected:", conn.ID())
		return nil
	})

	s.io.OnEvent("/", "join", func(conn socketio.Conn, data map[string]string) {
		topic := data["topic"]
		if topic == "" {
			log.Println("❌ Invalid topic in join request")
			return
		}
		conn.Join(topic)
		log.Printf("👥 Conn %s joined topic %s", conn.ID(), topic)
	})

	s.io.OnEvent("/", "leave", func(conn socketio.Conn, data map[string]string) {
		if topic := data["topic"]; topic != "" {
			conn.Leave(topic)
		}
	})

	// Client-originated broadcast: relay to the room and to in-process
	// channel handlers.
	s.io.OnEvent("/", "broadcast", func(conn socketio.Conn, message map[string]interface{}) {
		topic, _ := message["topic"].(string)
		kind, _ := message["kind"].(string)
		if topic == "" || kind == "" {
			return
		}
		sender, _ := message["userId"].(string)
		payload, _ := message["payload"].(map[string]interface{})
		s.io.BroadcastToRoom("/", topic, kind, message)
		s.dispatch(topic, realtime.Event{Kind: kind, Sender: sender, Payload: payload})
	})

	s.io.OnError("/", func(conn socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	s.io.OnDisconnect("/", func(conn socketio.Conn, reason string) {
		log.Println("👋 Socket disconnected:", conn.ID(), reason)
	})

	return s
}

// IO exposes the underlying socket.io server for HTTP mounting and Serve.
func (s *Server) IO() *socketio.Server {
	return s.io
}

// Notify broadcasts a server-originated event to the topic's room and to any
// in-process channels subscribed to it.
func (s *Server) Notify(topic, kind string, payload map[string]interface{}) {
	s.io.BroadcastToRoom("/", topic, kind, payload)
	s.dispatch(topic, realtime.Event{Kind: kind, Payload: payload})
}

// Channel returns an inactive handle for the topic. Nothing is delivered
// until the handle is activated.
func (s *Server) Channel(topic string) realtime.Channel {
	return &channel{server: s, topic: topic, handlers: make(map[string][]realtime.Handler)}
}

func (s *Server) dispatch(topic string, ev realtime.Event) {
	s.mu.Lock()
	channels := append([]*channel(nil), s.active[topic]...)
	s.mu.Unlock()
	for _, ch := range channels {
		ch.deliver(ev)
	}
}

func (s *Server) activate(ch *channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[ch.topic] = append(s.active[ch.topic], ch)
}

func (s *Server) deactivate(ch *channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.active[ch.topic][:0]
	for _, candidate := range s.active[ch.topic] {
		if candidate != ch {
			remaining = append(remaining, candidate)
		}
	}
	if len(remaining) == 0 {
		delete(s.active, ch.topic)
	} else {
		s.active[ch.topic] = remaining
	}
}

// channel is one topic handle. Handlers registered before activation receive
// every event delivered after activation, in delivery order.
type channel struct {
	server *Server
	topic  string

	mu       sync.Mutex
	handlers map[string][]realtime.Handler
	active   bool
}

func (c *channel) On(kind string, h realtime.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], h)
}

func (c *channel) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = true
	c.mu.Unlock()
	c.server.activate(c)
	return nil
}

func (c *channel) Deactivate(ctx context.Context) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = false
	c.mu.Unlock()
	c.server.deactivate(c)
	return nil
}

func (c *channel) Broadcast(ctx context.Context, kind string, payload map[string]interface{}) error {
	sender, _ := payload["userId"].(string)
	message := map[string]interface{}{
		"topic":   c.topic,
		"kind":    kind,
		"userId":  sender,
		"payload": payload,
	}
	c.server.io.BroadcastToRoom("/", c.topic, kind, message)
	c.server.dispatch(c.topic, realtime.Event{Kind: kind, Sender: sender, Payload: payload})
	return nil
}

func (c *channel) deliver(ev realtime.Event) {
	c.mu.Lock()
	handlers := append([]realtime.Handler(nil), c.handlers[ev.Kind]...)
	active := c.active
	c.mu.Unlock()
	if !active {
		return
	}
	for _, h := range handlers {
		h(ev)
	}
}
