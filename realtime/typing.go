package realtime

import (
	"sync"
	"time"
)

// typingState tracks which peer is typing on one channel. A typing event sets
// the peer and arms a cancellable expiry timer; a repeat event from the same
// peer restarts it; a stopped event or expiry clears the state.
type typingState struct {
	ttl time.Duration

	mu     sync.Mutex
	sender string
	timer  *time.Timer
}

func newTypingState(ttl time.Duration) *typingState {
	return &typingState{ttl: ttl}
}

func (t *typingState) touched(sender string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.sender = sender
	t.timer = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.sender == sender {
			t.sender = ""
			t.timer = nil
		}
	})
}

func (t *typingState) stopped(sender string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sender != sender {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.sender = ""
}

func (t *typingState) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.sender = ""
}

func (t *typingState) peer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sender
}
