package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/sculpture-guide/backend/api/handlers"
	"github.com/sculpture-guide/backend/internal/db"
	"github.com/sculpture-guide/backend/internal/realtime"
	"github.com/sculpture-guide/backend/internal/repository"
	"github.com/sculpture-guide/backend/internal/session"
	"github.com/sculpture-guide/backend/internal/store"
)

const defaultInstructions = "You are a knowledgeable and friendly guide for a sculpture gallery. " +
	"Answer questions about the sculptures, artists, materials, and periods in the collection. " +
	"Use any gallery information provided in the conversation; keep answers conversational and concise."

const defaultGreeting = "Welcome to the sculpture gallery! Ask me about any sculpture, artist, material, or period in the collection."

func main() {
	// Get configuration from environment
	port := getEnv("PORT", "8080")
	dataPath := getEnv("DATA_PATH", "data/sculptures.json")
	dbPath := getEnv("DB_PATH", "data/sessions.db")
	realtimeURL := getEnv("REALTIME_URL", "wss://api.openai.com/v1/realtime")
	realtimeModel := getEnv("REALTIME_MODEL", "gpt-4o-realtime-preview")
	apiKey := getEnv("OPENAI_API_KEY", "")
	voice := getEnv("VOICE", "alloy")

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repository
	sessionRepo := repository.NewSessionRepository(database)

	// Initialize entity store; a failed load is not fatal, sessions just
	// run without enrichment until a later load succeeds.
	entityStore := store.New(dataPath)
	go func() {
		if err := entityStore.Load(); err != nil {
			log.Printf("Dataset load failed (enrichment disabled): %v", err)
		} else {
			log.Printf("Dataset loaded from %s", dataPath)
		}
	}()

	// Initialize session registry
	registry := session.NewRegistry()

	// Initialize handlers
	voiceHandler := handlers.NewVoiceHandler(entityStore, sessionRepo, registry,
		realtime.Config{
			URL:    realtimeURL,
			APIKey: apiKey,
			Model:  realtimeModel,
		},
		session.Config{
			Model:              realtimeModel,
			Voice:              voice,
			Instructions:       defaultInstructions,
			Greeting:           defaultGreeting,
			TranscriptionModel: "whisper-1",
		})
	catalogueHandler := handlers.NewCatalogueHandler(entityStore)
	sessionHandler := handlers.NewSessionHandler(sessionRepo)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":        "ok",
			"datasetLoaded": entityStore.Loaded(),
			"liveSessions":  registry.Count(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		voiceHandler.RegisterRoutes(api)
		catalogueHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		registry.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
