package routes

import (
	"mingle_server/controllers"
	"mingle_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up conversation routes under /api/chat
func RegisterChatRoutes(r *mux.Router, conversationService *services.ConversationService) {
	controller := controllers.NewChatController(conversationService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.HandleFunc("/send", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/messages/{conversationId}", controller.HandleGetMessages).Methods("GET")
}
