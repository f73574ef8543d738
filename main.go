package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"mingle_server/config"
	"mingle_server/controllers"
	"mingle_server/events"
	"mingle_server/realtime"
	"mingle_server/routes"
	"mingle_server/services"
	"mingle_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize DynamoDB client and gateway
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	var s3Service *services.S3Service
	if cfg.S3Bucket != "" {
		s3Service = services.NewS3Service(cfg.AWSRegion, cfg.S3Bucket)
	}

	// Initialize Services
	emitter := events.NewEmitter()
	profileService := &services.UserProfileService{Dynamo: dynamoService, S3: s3Service}
	conversationService := &services.ConversationService{Dynamo: dynamoService}
	relationshipService := &services.RelationshipService{
		Dynamo:        dynamoService,
		Conversations: conversationService,
		Profiles:      profileService,
		Events:        emitter,
	}
	swipeService := &services.SwipeService{
		Dynamo:        dynamoService,
		Conversations: conversationService,
		Profiles:      profileService,
		Events:        emitter,
		DailyLimit:    cfg.DailySwipeLimit,
	}
	notificationService := &services.NotificationService{
		Dynamo:   dynamoService,
		Sources:  services.DefaultSources(dynamoService),
		Events:   emitter,
		PageSize: int32(cfg.NotificationPageSize),
	}

	// Realtime transport and per-user session managers
	socketServer := socket.NewServer()
	sessions := realtime.NewSessionRegistry(socketServer)
	sessions.TypingExpiry = time.Duration(cfg.TypingExpirySeconds) * time.Second

	// Relay engine state changes to the affected user's room
	socket.BindEmitter(emitter, socketServer)

	go func() {
		if err := socketServer.IO().Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.IO().Close()

	// Initialize the router
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintln(w, "Welcome to Mingle")
	}).Methods("GET")

	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")

	r.Handle("/socket.io/", socketServer.IO())

	// Register routes
	routes.RegisterRelationshipRoutes(r, relationshipService)
	routes.RegisterSwipeRoutes(r, swipeService)
	routes.RegisterChatRoutes(r, conversationService)
	routes.RegisterNotificationRoutes(r, notificationService)
	routes.RegisterRealtimeRoutes(r, sessions)
	if s3Service != nil {
		routes.RegisterS3Routes(r, s3Service)
	}

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	}).Handler(r)

	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
