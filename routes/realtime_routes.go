package routes

import (
	"mingle_server/controllers"
	"mingle_server/realtime"

	"github.com/gorilla/mux"
)

// RegisterRealtimeRoutes sets up subscription and typing routes under /api/realtime
func RegisterRealtimeRoutes(r *mux.Router, sessions *realtime.SessionRegistry) {
	controller := controllers.NewRealtimeController(sessions)

	realtimeRouter := r.PathPrefix("/api/realtime").Subrouter()
	realtimeRouter.HandleFunc("/subscribe", controller.HandleSubscribe).Methods("POST")
	realtimeRouter.HandleFunc("/unsubscribe", controller.HandleUnsubscribe).Methods("POST")
	realtimeRouter.HandleFunc("/typing", controller.HandleTyping).Methods("POST")
	realtimeRouter.HandleFunc("/stopTyping", controller.HandleStopTyping).Methods("POST")
	realtimeRouter.HandleFunc("/typingPeer", controller.HandleTypingPeer).Methods("GET")
}
