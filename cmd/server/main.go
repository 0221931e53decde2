package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/repolens/repolens/internal/adapter/ai"
	"github.com/repolens/repolens/internal/adapter/github"
	"github.com/repolens/repolens/internal/adapter/store"
	"github.com/repolens/repolens/internal/handler"
	"github.com/repolens/repolens/internal/middleware"
	"github.com/repolens/repolens/internal/port"
	"github.com/repolens/repolens/internal/service"
	"github.com/repolens/repolens/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting RepoLens",
		"port", cfg.Port,
		"github_api", cfg.GitHubBaseURL,
		"ai_enabled", cfg.GroqAPIKey != "",
		"audit_enabled", cfg.DatabaseURL != "",
	)

	// ── Database (optional, audit log only) ──────────────────────────────
	var pgStore *store.PostgresStore
	if cfg.DatabaseURL != "" {
		var err error
		pgStore, err = store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	ghClient := github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken)

	var enhancer port.Enhancer
	if cfg.GroqAPIKey != "" {
		enhancer = ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqModel, cfg.GroqAPIKey)
	} else {
		slog.Info("GROQ_API_KEY not set, AI enrichment disabled")
	}

	// ── Services ─────────────────────────────────────────────────────────
	analysisService := service.NewAnalysisService(
		ghClient,
		enhancer,
		time.Duration(cfg.EnhanceTimeout)*time.Second,
	)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // analyses can take a while with AI enrichment
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// A typed nil must not end up behind the AuditWriter interface.
	var auditWriter middleware.AuditWriter
	if pgStore != nil {
		auditWriter = pgStore
		app.Use(middleware.AuditMiddleware(pgStore))
	}

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	analysisHandler := handler.NewAnalysisHandler(analysisService, auditWriter)
	analysisHandler.Register(api)

	if pgStore != nil {
		auditHandler := handler.NewAuditHandler(pgStore)
		auditHandler.Register(api)
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
