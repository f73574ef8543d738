package controllers

import (
	"encoding/json"
	"net/http"

	"mingle_server/realtime"
)

// RealtimeController exposes subscription lifecycle and the typing
// sub-protocol for the current user's session.
type RealtimeController struct {
	Sessions *realtime.SessionRegistry
}

func NewRealtimeController(sessions *realtime.SessionRegistry) *RealtimeController {
	return &RealtimeController{Sessions: sessions}
}

func (tc *RealtimeController) decodeTopic(w http.ResponseWriter, r *http.Request) (manager *realtime.Manager, topic string, ok bool) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}

	var request struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return nil, "", false
	}
	return tc.Sessions.For(userID), request.Topic, true
}

// HandleSubscribe activates the topic for the current session (idempotent)
func (tc *RealtimeController) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	manager, topic, ok := tc.decodeTopic(w, r)
	if !ok {
		return
	}
	if _, err := manager.Subscribe(r.Context(), topic, nil); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": topic, "status": "subscribed"})
}

// HandleUnsubscribe tears the topic down for the current session
func (tc *RealtimeController) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	manager, topic, ok := tc.decodeTopic(w, r)
	if !ok {
		return
	}
	if err := manager.Unsubscribe(r.Context(), topic); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": topic, "status": "unsubscribed"})
}

// HandleTyping broadcasts a typing event on the topic
func (tc *RealtimeController) HandleTyping(w http.ResponseWriter, r *http.Request) {
	manager, topic, ok := tc.decodeTopic(w, r)
	if !ok {
		return
	}
	if err := manager.NotifyTyping(r.Context(), topic); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// HandleStopTyping broadcasts a stopped-typing event on the topic
func (tc *RealtimeController) HandleStopTyping(w http.ResponseWriter, r *http.Request) {
	manager, topic, ok := tc.decodeTopic(w, r)
	if !ok {
		return
	}
	if err := manager.StopTyping(r.Context(), topic); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// HandleTypingPeer reports who is currently typing on the topic
func (tc *RealtimeController) HandleTypingPeer(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}
	peer := tc.Sessions.For(userID).TypingPeer(topic)
	writeJSON(w, http.StatusOK, map[string]string{"topic": topic, "typingPeer": peer})
}
