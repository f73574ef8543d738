package routes

import (
	"mingle_server/controllers"
	"mingle_server/services"

	"github.com/gorilla/mux"
)

// RegisterNotificationRoutes sets up feed routes under /api/notifications
func RegisterNotificationRoutes(r *mux.Router, notificationService *services.NotificationService) {
	controller := controllers.NewNotificationController(notificationService)

	notificationRouter := r.PathPrefix("/api/notifications").Subrouter()
	notificationRouter.HandleFunc("/refresh", controller.HandleRefresh).Methods("POST")
	notificationRouter.HandleFunc("/markAllRead", controller.HandleMarkAllRead).Methods("POST")
	notificationRouter.HandleFunc("/markRead", controller.HandleMarkRead).Methods("POST")
	notificationRouter.HandleFunc("/remove", controller.HandleRemove).Methods("POST")
	notificationRouter.HandleFunc("/filter", controller.HandleFilter).Methods("GET")
}
