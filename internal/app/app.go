// Package app assembles the generation pipeline and its supporting services
// from configuration. Both the HTTP server and the CLI build on it.
package app

import (
	"fmt"
	"time"

	"smartstudy/internal/adapter"
	"smartstudy/internal/adapter/extractor"
	"smartstudy/internal/adapter/quizgen"
	"smartstudy/internal/cache"
	"smartstudy/internal/config"
	"smartstudy/internal/domain"
	"smartstudy/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services holds the wired application components.
type Services struct {
	Registry   *domain.ModelRegistry
	Cache      domain.Cache // nil without Redis
	Extractor  domain.TextExtractor
	Extraction service.ExtractionService
	Quizzes    service.QuizService
	Jobs       service.JobService

	redisClient *redis.Client
}

// New wires every service. Redis is optional: when no address is configured
// or the server cannot be reached, caching is disabled and jobs are kept in
// memory.
func New(cfg *config.Config, log *zap.Logger) (*Services, error) {
	registry, err := cfg.ModelRegistry()
	if err != nil {
		return nil, err
	}

	resolver, err := quizgen.NewResolver(cfg, registry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build generation backends: %w", err)
	}

	s := &Services{Registry: registry}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			log.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
			s.redisClient = client
			s.Cache = adapter.NewRedisCacheAdapter(client)
		}
	}

	httpExtractor, err := extractor.NewHTTPExtractor(cfg.Extractor, nil)
	if err != nil {
		log.Warn("Text extraction disabled", zap.Error(err))
	} else {
		s.Extractor = httpExtractor
		s.Extraction = service.NewExtractionService(
			httpExtractor,
			s.Cache,
			cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Extraction, time.Hour),
			cfg.Extractor.MaxFileBytes,
		)
	}

	invoker := service.NewInvoker(resolver, cfg.Generation.MaxCallRetries, cfg.Generation.BackoffBase, service.ContextSleep, log)
	orchestrator := service.NewFallbackOrchestrator(registry, invoker, log)
	batches := service.NewBatchService(orchestrator, cfg.Generation, service.ContextSleep, log)
	s.Quizzes = service.NewQuizService(batches, s.Extraction, registry, cfg)

	jobTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Job, 30*time.Minute)
	var store domain.JobStore
	if s.Cache != nil {
		store = service.NewCacheJobStore(s.Cache, jobTTL)
	} else {
		store = service.NewMemoryJobStore(jobTTL)
	}
	s.Jobs = service.NewJobService(s.Quizzes, store, service.DefaultJobTimeout)

	return s, nil
}

// Close releases the Redis connection, if any.
func (s *Services) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}
