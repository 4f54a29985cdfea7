package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"financeflip-backend/internal/agent"
	"financeflip-backend/internal/config"
	"financeflip-backend/internal/database"
	"financeflip-backend/internal/handlers"
	"financeflip-backend/internal/llm"
	"financeflip-backend/internal/router"
	"financeflip-backend/internal/warehouse"
	"financeflip-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting FinanceFlip Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Warehouse ────
	db, err := database.NewSQLitePool(cfg.WarehousePath)
	if err != nil {
		log.Fatalf("✗ Warehouse open failed: %v", err)
	}
	defer db.Close()
	log.Println("✓ Warehouse opened")

	warehouseService := warehouse.New(db)
	if err := warehouseService.InitSchema(context.Background()); err != nil {
		log.Fatalf("✗ Warehouse schema init failed: %v", err)
	}
	log.Println("✓ Warehouse schema ready")

	// ──── Step 3: Connect Redis (optional) ────
	var wsHub *websocket.Hub
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		wsHub = websocket.NewHub(redisClients.PubSub)
		log.Println("✓ Redis connected, step relay enabled")
	} else {
		log.Println("• Redis not configured, step relay disabled")
	}

	// ──── Step 4: Initialize LLM Provider ────
	var provider llm.Provider
	switch cfg.LLMProvider {
	case "openai":
		provider = llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		gemini, err := llm.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		provider = gemini
	}
	log.Printf("✓ LLM provider initialized (%s)", provider.Name())

	// ──── Step 5: Load Prompt Catalog ────
	catalog := llm.DefaultCatalog()
	if cfg.PromptCatalogPath != "" {
		catalog, err = llm.LoadCatalog(cfg.PromptCatalogPath)
		if err != nil {
			log.Fatalf("✗ Prompt catalog load failed: %v", err)
		}
	}
	log.Printf("✓ Prompt catalog loaded (%d components)", len(catalog.Components))

	// ──── Step 6: Wire Agent and Handlers ────
	agentService := agent.NewService(provider, warehouseService, catalog)
	queryHandler := handlers.NewQueryHandler(agentService, wsHub)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(queryHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No write timeout: SSE responses stay open for the whole query.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ FinanceFlip Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
