package routes

import (
	"mingle_server/controllers"
	"mingle_server/services"

	"github.com/gorilla/mux"
)

// RegisterRelationshipRoutes sets up friend-request and block routes under /api/relationships
func RegisterRelationshipRoutes(r *mux.Router, relationshipService *services.RelationshipService) {
	controller := controllers.NewRelationshipController(relationshipService)

	relationshipRouter := r.PathPrefix("/api/relationships").Subrouter()
	relationshipRouter.HandleFunc("/request", controller.HandleSendRequest).Methods("POST")
	relationshipRouter.HandleFunc("/respond", controller.HandleRespond).Methods("POST")
	relationshipRouter.HandleFunc("/block", controller.HandleBlock).Methods("POST")
	relationshipRouter.HandleFunc("/unblock", controller.HandleUnblock).Methods("POST")
	relationshipRouter.HandleFunc("/pending", controller.HandlePendingRequests).Methods("GET")
	relationshipRouter.HandleFunc("/sent", controller.HandleSentRequests).Methods("GET")
	relationshipRouter.HandleFunc("/exclusions", controller.HandleExclusions).Methods("GET")
	relationshipRouter.HandleFunc("/friends", controller.HandleFriends).Methods("GET")
}
