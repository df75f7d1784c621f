package main

import (
	"context"
	"log"
	"os"

	"lawgraph-backend/handlers"
	"lawgraph-backend/repository"
	"lawgraph-backend/rules"
	"lawgraph-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()

	// Initialize the graph store (neo4j, postgres, or the seeded memory backend)
	store, err := repository.NewGraphStoreFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to initialize graph store:", err)
	}
	defer store.Close(ctx)
	log.Println("Graph store initialized")

	// Load the keyword rule table
	table := rules.DefaultTable()
	if path := os.Getenv("RULES_FILE"); path != "" {
		table, err = rules.LoadTable(path)
		if err != nil {
			log.Fatalf("Failed to load rule table from %s: %v", path, err)
		}
		log.Printf("Rule table loaded from %s", path)
	}

	// Initialize services
	analysisService := service.NewAnalysisService(
		service.WithGraphStore(store),
		service.WithRuleTable(table),
	)
	sectionService := service.NewSectionService(
		service.SectionWithGraphStore(store),
	)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	sectionHandler := handlers.NewSectionHandler(sectionService)

	// Setup Gin router
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.RequestIDHeader},
		ExposeHeaders:    []string{handlers.RequestIDHeader},
		AllowCredentials: true,
	}))
	r.Use(handlers.RequestID())

	// Health check endpoint
	r.GET("/health", sectionHandler.Health)

	// API routes
	api := r.Group("/api")
	{
		// Analysis endpoint
		api.POST("/analyze", analysisHandler.AnalyzeCase)

		// Section endpoints
		api.GET("/section/:id", sectionHandler.GetSection)
		api.GET("/graph/section/:id", sectionHandler.GetSectionGraph)
		api.GET("/search", sectionHandler.SearchSections)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
