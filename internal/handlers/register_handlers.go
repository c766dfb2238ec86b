package handlers

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
	"github.com/atelierhq/atelier_finance_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.Use(cors.Default())

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.CallerIdentity())

	if limiterInstance := buildRateLimiter(cfg.RateLimit); limiterInstance != nil {
		v1.Use(middleware.RateLimit(limiterInstance))
	}

	registerAccountRoutes(v1, services.Account)
	registerJournalRoutes(v1, services.Ledger)
	registerCurrencyRoutes(v1, services.Currency, services.Revaluation)
	registerProjectRoutes(v1, services.Project)
	registerForecastRoutes(v1, services.Forecast)
}

// buildRateLimiter parses a formatted limit like "100-M" into an in-memory
// limiter. An empty or malformed value disables rate limiting.
func buildRateLimiter(formatted string) *limiter.Limiter {
	if formatted == "" {
		return nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		slog.Warn("Invalid rate limit configuration, rate limiting disabled", slog.String("value", formatted), slog.String("error", err.Error()))
		return nil
	}
	return limiter.New(memorystore.NewStore(), rate)
}
