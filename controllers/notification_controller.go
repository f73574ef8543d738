package controllers

import (
	"encoding/json"
	"net/http"

	"mingle_server/services"
)

// NotificationController handles HTTP requests for the unified feed
type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// HandleRefresh re-aggregates and returns the current user's feed
func (nc *NotificationController) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := nc.Notifications.Refresh(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"unread": nc.Notifications.Unread(userID),
	})
}

// HandleMarkAllRead advances the read watermark to now
func (nc *NotificationController) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := nc.Notifications.MarkAllRead(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked read"})
}

// HandleMarkRead flips a single item to read
func (nc *NotificationController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	nc.handleItemAction(w, r, nc.Notifications.MarkRead)
}

// HandleRemove removes a single item from the feed
func (nc *NotificationController) HandleRemove(w http.ResponseWriter, r *http.Request) {
	nc.handleItemAction(w, r, nc.Notifications.Remove)
}

func (nc *NotificationController) handleItemAction(w http.ResponseWriter, r *http.Request, action func(userID, itemID string)) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var request struct {
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.ItemID == "" {
		http.Error(w, "itemId is required", http.StatusBadRequest)
		return
	}

	action(userID, request.ItemID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"unread": nc.Notifications.Unread(userID)})
}

// HandleFilter partitions the in-memory feed by category
func (nc *NotificationController) HandleFilter(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	category := r.URL.Query().Get("category")
	writeJSON(w, http.StatusOK, nc.Notifications.Filter(userID, category))
}
