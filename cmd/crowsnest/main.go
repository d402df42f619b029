package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	crowsnestconfig "crowsnest/internal/config"
	"crowsnest/internal/evidence"
	"crowsnest/internal/handlers"
	"crowsnest/internal/pipeline"
	"crowsnest/internal/respond"
	"crowsnest/internal/scoring"
	"crowsnest/internal/sources"
	"crowsnest/internal/store"
	"crowsnest/pkg/config"
	"crowsnest/pkg/database"
	"crowsnest/pkg/llm"
	"crowsnest/pkg/logging"
	"crowsnest/pkg/server"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("crowsnest")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Crow's Nest (Reputation Monitoring API)")

	cfg := crowsnestconfig.LoadConfig()

	// Connect to database. The service runs without one: posts are still
	// fetched and scored, they just are not persisted.
	var postStore store.Store
	if cfg.DatabaseURL != "" {
		dbConfig := database.DefaultConfig()
		dbConfig.URL = cfg.DatabaseURL
		db, err := database.Connect(dbConfig, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to database - storage disabled")
		} else {
			defer func() { _ = db.Close() }()
			if err := store.EnsureSchema(context.Background(), db); err != nil {
				logger.WithError(err).Warn("Failed to apply database schema - storage disabled")
			} else {
				postStore = store.NewStore(db)
			}
		}
	} else {
		logger.Warn("DATABASE_URL not set - storage disabled")
	}

	llmProvider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey,
		APIURL:   cfg.LLMAPIURL,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize LLM provider - scoring falls back to neutral")
		llmProvider = nil
	}
	if llmProvider == nil {
		logger.Warn("LLM provider not configured - scoring, drafting and translation degraded")
	}
	if cfg.RapidAPIKey == "" {
		logger.Warn("RAPIDAPI_KEY not set - Twitter, Reddit and Facebook sources disabled")
	}
	if cfg.SerpAPIKey == "" {
		logger.Warn("SERPAPI_KEY not set - News source and evidence collection disabled")
	}

	fetchers := []sources.Fetcher{
		sources.NewTwitterClient(cfg.RapidAPIKey, cfg.TwitterAPIURL, logger),
		sources.NewRedditClient(cfg.RapidAPIKey, cfg.RedditAPIURL, logger),
		sources.NewNewsClient(cfg.SerpAPIKey, cfg.NewsAPIURL, logger),
		sources.NewFacebookClient(cfg.RapidAPIKey, cfg.FacebookAPIURL, cfg.FacebookHost, logger),
	}

	searchPipeline := pipeline.New(pipeline.Config{
		Fetchers: fetchers,
		Scorer:   scoring.NewScorer(scoring.Config{LLM: llmProvider, Logger: logger}),
		Evidence: evidence.NewCollector(evidence.Config{APIKey: cfg.SerpAPIKey, Logger: logger}),
		Drafter:  respond.NewDrafter(respond.DrafterConfig{LLM: llmProvider, Logger: logger}),
		Store:    postStore,
		Model:    cfg.LLMModel,
		Logger:   logger,
	})

	translator := respond.NewTranslator(respond.TranslatorConfig{LLM: llmProvider, Logger: logger})

	router := server.SetupRouter(logger, "crowsnest")
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := handlers.New(handlers.Config{
		Pipeline:   searchPipeline,
		Store:      postStore,
		Translator: translator,
		Logger:     logger,
	})
	api.RegisterRoutes(router)

	serverConfig := server.DefaultConfig("crowsnest", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
