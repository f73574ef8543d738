package controllers

import (
	"encoding/json"
	"net/http"

	"mingle_server/services"
)

// RelationshipController handles HTTP requests for friend requests and blocks
type RelationshipController struct {
	Relationships *services.RelationshipService
}

func NewRelationshipController(relationships *services.RelationshipService) *RelationshipController {
	return &RelationshipController{Relationships: relationships}
}

// HandleSendRequest sends a friend request with an optional first message
func (rc *RelationshipController) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		TargetUserID string `json:"targetUserId"`
		Message      string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.TargetUserID == "" {
		http.Error(w, "targetUserId is required", http.StatusBadRequest)
		return
	}

	edge, err := rc.Relationships.SendRequest(r.Context(), userID, request.TargetUserID, request.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// HandleRespond accepts or declines a pending request
func (rc *RelationshipController) HandleRespond(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		EdgeID string `json:"edgeId"`
		Accept bool   `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.EdgeID == "" {
		http.Error(w, "edgeId is required", http.StatusBadRequest)
		return
	}

	conversation, err := rc.Relationships.Respond(r.Context(), userID, request.EdgeID, request.Accept)
	if err != nil {
		writeError(w, err)
		return
	}
	if conversation == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Request declined"})
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

// HandleBlock blocks a user
func (rc *RelationshipController) HandleBlock(w http.ResponseWriter, r *http.Request) {
	rc.handleBlockAction(w, r, true)
}

// HandleUnblock unblocks a user
func (rc *RelationshipController) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	rc.handleBlockAction(w, r, false)
}

func (rc *RelationshipController) handleBlockAction(w http.ResponseWriter, r *http.Request, block bool) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		TargetUserID string `json:"targetUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.TargetUserID == "" {
		http.Error(w, "targetUserId is required", http.StatusBadRequest)
		return
	}

	if block {
		err = rc.Relationships.Block(r.Context(), userID, request.TargetUserID)
	} else {
		err = rc.Relationships.Unblock(r.Context(), userID, request.TargetUserID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// HandlePendingRequests lists requests addressed to the current user
func (rc *RelationshipController) HandlePendingRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	requests, err := rc.Relationships.PendingRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HandleSentRequests lists the current user's outgoing pending requests
func (rc *RelationshipController) HandleSentRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	requests, err := rc.Relationships.SentRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HandleExclusions lists users excluded from the current user's feeds
func (rc *RelationshipController) HandleExclusions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	exclusions, err := rc.Relationships.ListExclusions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	userIDs := make([]string, 0, len(exclusions))
	for excluded := range exclusions {
		userIDs = append(userIDs, excluded)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"excluded": userIDs})
}

// HandleFriends lists the current user's friends
func (rc *RelationshipController) HandleFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	friends, err := rc.Relationships.Profiles.Friends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}
