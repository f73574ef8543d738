package routes

import (
	"mingle_server/controllers"
	"mingle_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up swipe and match routes under /api/swipes
func RegisterSwipeRoutes(r *mux.Router, swipeService *services.SwipeService) {
	controller := controllers.NewSwipeController(swipeService)

	swipeRouter := r.PathPrefix("/api/swipes").Subrouter()
	swipeRouter.HandleFunc("/swipe", controller.HandleSwipe).Methods("POST")
	swipeRouter.HandleFunc("/undo", controller.HandleUndo).Methods("POST")
	swipeRouter.HandleFunc("/admirers", controller.HandleAdmirers).Methods("GET")
	swipeRouter.HandleFunc("/matches", controller.HandleMatches).Methods("GET")
}
