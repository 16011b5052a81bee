package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sms-bridge/internal/config"
	"sms-bridge/internal/db"
	apihttp "sms-bridge/internal/http"
	"sms-bridge/internal/nlu"
	"sms-bridge/internal/repository"
	"sms-bridge/internal/service"
	"sms-bridge/internal/telephony"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	validator, err := telephony.NewValidator(cfg.Twilio.AuthToken, cfg.PublicScheme, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("twilio validator", zap.Error(err))
	}

	detector, err := nlu.NewDialogflowDetector(ctx, cfg.Dialogflow, logger)
	if err != nil {
		logger.Fatal("dialogflow connect", zap.Error(err))
	}
	defer detector.Close()

	var (
		replyCache  service.ReplyCache
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory reply cache", zap.Error(err))
		} else {
			replyCache = service.NewRedisReplyCache(redisClient, cfg.ReplyCacheTTL)
		}
		cancel()
	}
	if replyCache == nil {
		replyCache = service.NewMemoryReplyCache(cfg.ReplyCacheTTL)
	}

	var (
		statusRecorder apihttp.StatusRecorder
		pool           *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		statusRecorder = service.NewStatusService(repository.NewPgStatusRepository(pool))
	} else {
		logger.Info("DATABASE_URL not set, delivery statuses are only logged")
	}

	replySvc := service.NewReplyService(detector, replyCache, logger)
	smsHandler, err := apihttp.NewSMSHandler(logger, replySvc)
	if err != nil {
		logger.Fatal("sms handler", zap.Error(err))
	}
	statusHandler := apihttp.NewStatusHandler(logger, statusRecorder)

	var (
		queryTokens  *service.QueryTokenService
		queryHandler *apihttp.QueryHandler
	)
	if cfg.QueryAuth.JWTSecret != "" {
		queryTokens = service.NewQueryTokenService(cfg.QueryAuth.JWTSecret, cfg.QueryAuth.TokenTTL)
		queryHandler = apihttp.NewQueryHandler(logger, detector)
	} else {
		logger.Info("QUERY_JWT_SECRET not set, /query endpoints disabled")
	}

	router := apihttp.NewRouter(logger, validator, queryTokens, smsHandler, statusHandler, queryHandler)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
	}
	ln, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("public_scheme", cfg.PublicScheme),
		zap.String("project", cfg.Dialogflow.ProjectID),
	)

	// Serve retorna recién cuando los handlers en curso terminaron; después
	// corren los Close diferidos de detector, pool y redis.
	if err := apihttp.Serve(ctx, server, ln, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
