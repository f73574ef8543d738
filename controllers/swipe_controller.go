package controllers

import (
	"encoding/json"
	"net/http"

	"mingle_server/services"
)

// SwipeController handles HTTP requests for swipes, undo, admirers, and matches
type SwipeController struct {
	Swipes *services.SwipeService
}

func NewSwipeController(swipes *services.SwipeService) *SwipeController {
	return &SwipeController{Swipes: swipes}
}

// HandleSwipe records a directional action and reports any resulting match
func (sc *SwipeController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		TargetUserID string `json:"targetUserId"`
		Direction    string `json:"direction"`
		Type         string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.TargetUserID == "" || request.Direction == "" || request.Type == "" {
		http.Error(w, "targetUserId, direction, and type are required", http.StatusBadRequest)
		return
	}

	match, err := sc.Swipes.RecordSwipe(r.Context(), userID, request.TargetUserID, request.Direction, request.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	if match == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"matched": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matched": true, "match": match})
}

// HandleUndo deletes the current user's swipe on a target
func (sc *SwipeController) HandleUndo(w http.ResponseWriter, r *http.Request) {
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

	if err := sc.Swipes.UndoSwipe(r.Context(), userID, request.TargetUserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Swipe undone"})
}

// HandleAdmirers lists users who liked the current user and remain undecided
func (sc *SwipeController) HandleAdmirers(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	admirers, err := sc.Swipes.FetchAdmirers(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admirers)
}

// HandleMatches lists the current user's matches with counterpart snapshots
func (sc *SwipeController) HandleMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	matches, err := sc.Swipes.Matches(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
