package handler

import (
	"context"
	"time"

	"smartstudy/internal/domain"
	"smartstudy/internal/dto"
	"smartstudy/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// HealthHandler reports service liveness and dependency reachability
type HealthHandler struct {
	cache     domain.Cache
	extractor domain.TextExtractor
}

// NewHealthHandler creates a HealthHandler. Either dependency may be nil
// when it is not configured.
func NewHealthHandler(cache domain.Cache, extractor domain.TextExtractor) *HealthHandler {
	return &HealthHandler{cache: cache, extractor: extractor}
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "SmartStudy Quiz API", "status": "running"})
}

// Health godoc
// @Summary Health check
// @Description Always answers healthy while the process runs; components report dependency state
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	components := map[string]string{
		"redis":     componentStatus(ctx, "redis", h.cache, func(ctx context.Context) error { return h.cache.Ping(ctx) }),
		"extractor": componentStatus(ctx, "extractor", h.extractor, func(ctx context.Context) error { return h.extractor.Health(ctx) }),
	}
	return c.JSON(dto.HealthResponse{Status: "healthy", Components: components})
}

func componentStatus(ctx context.Context, name string, dep interface{}, check func(context.Context) error) string {
	if dep == nil {
		return "disabled"
	}
	if err := check(ctx); err != nil {
		logger.Get().Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return "unavailable"
	}
	return "ok"
}
