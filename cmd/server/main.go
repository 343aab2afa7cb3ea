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

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"persona-tutor/internal/config"
	"persona-tutor/internal/database"
	"persona-tutor/internal/handlers"
	"persona-tutor/internal/middleware"
	"persona-tutor/internal/router"
	"persona-tutor/internal/sandbox"
	"persona-tutor/internal/services"
	"persona-tutor/internal/session"
	"persona-tutor/internal/websocket"
)

const janitorInterval = time.Minute

func main() {
	log.Println("🚀 Starting Persona Tutor...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}
	if !cfg.IsDevelopment() {
		cfg.SessionSecret = config.MustGetEnv("SESSION_SECRET")
	} else if cfg.SessionSecret == "" {
		cfg.SessionSecret = uuid.NewString()
		log.Println("WARNING: SESSION_SECRET not set, using a random secret; session tokens will not survive a restart")
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Clients (optional) ────
	var publisher, subscriber *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL, cfg.RedisMaxSubscriptions)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		publisher, subscriber = redisClients.Publisher, redisClients.Subscriber
		log.Println("✓ Redis connected")
	} else {
		log.Println("✓ Redis not configured, websocket events stay in-process")
	}

	// ──── Step 3: Initialize Completion Client ────
	provider, err := services.NewProvider(cfg.LLMProvider, services.Endpoints{
		GroqBaseURL:    cfg.GroqBaseURL,
		GeminiEndpoint: cfg.GeminiEndpoint,
	})
	if err != nil {
		log.Fatalf("✗ Completion provider initialization failed: %v", err)
	}
	completion := services.NewCompletionClient(provider)
	log.Printf("✓ Completion client initialized (%s, model %s)", provider.Name(), cfg.LLMModel)

	prompts, err := services.NewPromptBuilder(cfg.PromptsPath)
	if err != nil {
		log.Fatalf("✗ Prompt templates failed to load: %v", err)
	}
	log.Println("✓ Prompt templates loaded")

	// ──── Step 4: Initialize Code Sandbox ────
	runner, closeRunner, err := sandbox.NewRunner(cfg.SandboxBackend, cfg.SandboxPython, cfg.SandboxImage, cfg.SandboxTimeout)
	if err != nil {
		log.Fatalf("✗ Sandbox initialization failed: %v", err)
	}
	defer closeRunner()
	log.Printf("✓ Sandbox ready (%s backend)", cfg.SandboxBackend)

	// ──── Step 5: Start WebSocket Hub & Session Store ────
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret)
	wsHub := websocket.NewHub(publisher, subscriber, sessionAuth)
	defer wsHub.Close()

	store := session.NewStore(cfg.SessionTTL)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	store.StartJanitor(janitorCtx, janitorInterval, wsHub.Drop)
	log.Println("✓ WebSocket hub and session store started")

	controller := session.NewController(store, completion, prompts, runner, wsHub, session.Options{
		Model:         cfg.LLMModel,
		Temperature:   cfg.LLMTemperature,
		DefaultAPIKey: cfg.LLMAPIKey,
		Language:      cfg.SandboxLanguage,
	})

	// ──── Initialize Handlers ────
	homeHandler := handlers.NewHomeHandler(controller)
	sessionHandler := handlers.NewSessionHandler(controller, sessionAuth)
	chatHandler := handlers.NewChatHandler(controller)
	quizHandler := handlers.NewQuizHandler(controller)
	sandboxHandler := handlers.NewSandboxHandler(controller)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		homeHandler,
		sessionHandler,
		chatHandler,
		quizHandler,
		sandboxHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // completions and snippet runs are synchronous
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		stopJanitor()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Persona Tutor ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
