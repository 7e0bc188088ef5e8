package main

import (
	"context"
	"log"

	"github.com/vigourpt/themonneygate2/config"
	"github.com/vigourpt/themonneygate2/db"
	"github.com/vigourpt/themonneygate2/handlers/keywords"
	"github.com/vigourpt/themonneygate2/handlers/research"
	"github.com/vigourpt/themonneygate2/handlers/subscriptions"
	"github.com/vigourpt/themonneygate2/handlers/tools"
	"github.com/vigourpt/themonneygate2/routes"
	"github.com/vigourpt/themonneygate2/services/dataforseo"
	"github.com/vigourpt/themonneygate2/services/llm"

	"github.com/gin-gonic/gin"
)

// @title MoneyGate API
// @version 1.0
// @description Backend API for MoneyGate: keyword research, AI tool generation and subscription billing
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	cfg := config.Load()

	db.InitDB()

	keywordProvider := dataforseo.NewClient(cfg.DataForSEOUsername, cfg.DataForSEOPassword)

	var generator llm.Generator
	geminiClient, err := llm.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("Warning: Gemini initialization failed: %v", err)
		log.Println("Tool generation will not work until GEMINI_API_KEY is configured.")
	} else {
		generator = geminiClient
	}

	r := routes.SetupRouter(&routes.Handlers{
		Keywords:      keywords.NewHandler(keywordProvider),
		Research:      research.NewHandler(keywordProvider),
		Tools:         tools.NewHandler(generator),
		Subscriptions: subscriptions.NewHandler(&cfg),
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
