package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mingle_server/services"

	"github.com/gorilla/mux"
)

// ChatController handles HTTP requests for conversation messages
type ChatController struct {
	Conversations *services.ConversationService
}

func NewChatController(conversations *services.ConversationService) *ChatController {
	return &ChatController{Conversations: conversations}
}

// HandleSendMessage appends a message to an existing conversation
func (cc *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		TargetUserID string `json:"targetUserId"`
		Type         string `json:"type"`
		Content      string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.TargetUserID == "" || request.Type == "" || request.Content == "" {
		http.Error(w, "targetUserId, type, and content are required", http.StatusBadRequest)
		return
	}

	conversation, err := cc.Conversations.ForPair(r.Context(), userID, request.TargetUserID, request.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	message, err := cc.Conversations.SendMessage(r.Context(), conversation, userID, request.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// HandleGetMessages fetches messages for a conversation, newest first
func (cc *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUserID(r); err != nil {
		writeError(w, err)
		return
	}

	conversationID := mux.Vars(r)["conversationId"]
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := cc.Conversations.Messages(r.Context(), conversationID, int32(limit))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
