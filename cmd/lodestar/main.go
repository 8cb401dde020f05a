package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lodestar-search/lodestar/internal/chunker"
	"github.com/lodestar-search/lodestar/internal/config"
	"github.com/lodestar-search/lodestar/internal/db"
	dbRedis "github.com/lodestar-search/lodestar/internal/db/redis"
	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/lexical"
	logpkg "github.com/lodestar-search/lodestar/internal/logger"
	"github.com/lodestar-search/lodestar/internal/metrics"
	"github.com/lodestar-search/lodestar/internal/registry/sqlite"
	"github.com/lodestar-search/lodestar/internal/repository/embcache"
	vectorrepo "github.com/lodestar-search/lodestar/internal/repository/vector"
	chiTransport "github.com/lodestar-search/lodestar/internal/transport/chi"
	openaiEmb "github.com/lodestar-search/lodestar/internal/transport/openai"
	documentuc "github.com/lodestar-search/lodestar/internal/usecase/document"
	healthuc "github.com/lodestar-search/lodestar/internal/usecase/health"
	ingestuc "github.com/lodestar-search/lodestar/internal/usecase/ingest"
	searchuc "github.com/lodestar-search/lodestar/internal/usecase/search"
	"github.com/lodestar-search/lodestar/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lodestar API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("registry_path", cfg.Registry.Path),
	)

	// Search index store (RediSearch)
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Document registry (sqlite)
	registry, err := sqlite.Open(cfg.Registry.Path)
	if err != nil {
		logger.Fatal("Failed to open registry", zap.Error(err))
	}
	defer func() { _ = registry.Close() }()

	// Register retrieval and embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Document and query texts get different instructions, so each side
	// carries its own cache-keyed embedder chain.
	docEmbedder := buildEmbedder(cfg, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(cfg, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Vector index
	vectorRepo := vectorrepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(vectorrepo.HNSWConfig{
			M:           cfg.Retrieval.HNSWM,
			EFConstruct: cfg.Retrieval.HNSWEFConstruct,
		})
	if err := vectorRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	// Lexical index lives in memory and is rebuilt from the registry on boot
	lexicalIndex := lexical.NewIndex()
	rehydrated := 0
	err = registry.AllChunks(ctx, func(c domain.Chunk) error {
		lexicalIndex.AddChunk(c)
		rehydrated++
		return nil
	})
	if err != nil {
		logger.Fatal("Failed to rehydrate lexical index", zap.Error(err))
	}
	logger.Info("Lexical index rehydrated", zap.Int("chunks", rehydrated))

	// Chunker
	splitter, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		logger.Fatal("Invalid chunking config", zap.Error(err))
	}

	// Use case services
	ingestSvc := ingestuc.New(splitter, docEmbedder, vectorRepo, lexicalIndex, registry)
	searchSvc := searchuc.New(queryEmbedder, vectorRepo, lexicalIndex, registry, searchuc.Config{
		RRFK:           cfg.Retrieval.RRFK,
		CandidateLimit: cfg.Retrieval.CandidateLimit,
		MaxTopK:        cfg.Retrieval.MaxTopK,
	})
	documentSvc := documentuc.New(registry, vectorRepo, lexicalIndex)
	healthSvc := healthuc.New(store, registry, newEmbeddingHealthChecker(docEmbedder))

	// HTTP server
	server := chiTransport.NewServer(ingestSvc, documentSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction prefix sits outermost so the cache key includes it.
func buildEmbedder(cfg config.Config, instruction string, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
		embedder = embcache.New(base, store, cfg.Storage.KeyPrefix, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
