package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homophily-study/internal/config"
	"homophily-study/internal/db"
	apihttp "homophily-study/internal/http"
	"homophily-study/internal/llm"
	"homophily-study/internal/repository"
	"homophily-study/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	experiment, err := config.LoadExperiment(cfg.ExperimentFile)
	if err != nil {
		logger.Fatal("experiment config", zap.Error(err))
	}

	var (
		participantRepo repository.ParticipantRepository
		messageRepo     repository.MessageRepository
		ratingRepo      repository.RatingRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.InitSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		participantRepo = repository.NewPgParticipantRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
		ratingRepo = repository.NewPgRatingRepository(pool)
		logger.Info("storage backend", zap.String("backend", "postgres"))
	} else {
		store, err := repository.NewCsvStore(cfg.DataDir)
		if err != nil {
			logger.Fatal("csv store init", zap.Error(err))
		}
		participantRepo = repository.NewCsvParticipantRepository(store)
		messageRepo = repository.NewCsvMessageRepository(store)
		ratingRepo = repository.NewCsvRatingRepository(store)
		logger.Info("storage backend", zap.String("backend", "csv"), zap.String("dir", cfg.DataDir))
	}

	var counter repository.ParticipantCounter = repository.NewRepoCounter(participantRepo)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using local counter", zap.Error(err))
		} else {
			counter = repository.NewRedisCounter(redisClient, "")
			logger.Info("participant counter", zap.String("backend", "redis"))
		}
		cancel()
	}

	var policy service.AssignmentPolicy
	switch cfg.AssignmentMode {
	case "similarity":
		policy = service.SimilarityPolicy{
			Centroids: experiment.Centroids,
			TopicA:    experiment.TopicA,
			TopicB:    experiment.TopicB,
			Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		}
	default:
		policy = service.CounterbalancePolicy{
			TopicA: experiment.TopicA,
			TopicB: experiment.TopicB,
		}
	}
	logger.Info("assignment policy", zap.String("policy", policy.Name()))

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens, logger)
	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured")
	}

	prompts := service.PromptBuilder{
		Turns:     experiment.MessagesPerBot,
		Centroids: experiment.Centroids,
	}

	studySvc := service.NewStudyService(logger, participantRepo, messageRepo, ratingRepo, counter, policy)
	chatSvc := service.NewChatService(logger, llmClient, messageRepo, prompts, cfg.LLMModel, experiment.MessagesPerBot)

	studyHandler := apihttp.NewStudyHandler(logger, studySvc, experiment)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	adminHandler := apihttp.NewAdminHandler(logger, studySvc, cfg.DataDir)
	router := apihttp.NewRouter(logger, cfg.AdminSecret, studyHandler, chatHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
