package monitoring

import (
	"context"
	"time"

	"github.com/videoscale/waitlist-api/config/router"
	"github.com/videoscale/waitlist-api/internal/log"
	"github.com/videoscale/waitlist-api/pkg/constants"
	"github.com/videoscale/waitlist-api/pkg/ratelimit"
	"gorm.io/gorm"
)

type Cache interface {
	Ping(ctx context.Context) error
}

const (
	DatabaseConnected    = "Connected"
	DatabaseDisconnected = "Disconnected"
)

type MonitoringController struct {
	db        *gorm.DB
	logger    *log.Logger
	cache     Cache
	startTime time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache) *router.RESTController {
	ctrl := &MonitoringController{
		db:        db,
		logger:    logger,
		cache:     cache,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {

			monitoringRateLimiter := createMonitoringRateLimiter()

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func createMonitoringRateLimiter() ratelimit.RateLimiter {

	const monitoringRequestsPerMinute = 60

	config := &ratelimit.RateLimitConfig{
		Requests: monitoringRequestsPerMinute,
		Window:   time.Minute,
		Redis:    nil,
		Logger:   nil,
	}

	return ratelimit.NewRateLimiter(config)
}

// healthCheck reports liveness plus store connectivity. The body shape is
// fixed (no success envelope): {status, timestamp, database}.
func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)

	databaseStatus := DatabaseDisconnected
	if ctrl.checkDatabase(c.Request.Context()) {
		databaseStatus = DatabaseConnected
	} else {
		logger.Error("Database health check failed", "uptime_seconds", int(time.Since(ctrl.startTime).Seconds()))
	}

	ctrl.checkCacheConnectivity(c.Request.Context(), logger)

	return router.RawResult(200, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().Format(constants.RFC3339DateTimeFormat),
		"database":  databaseStatus,
	})
}

// checkCacheConnectivity only logs; the cache is optional and its health is
// not part of the response contract.
func (ctrl *MonitoringController) checkCacheConnectivity(ctx context.Context, logger *log.Logger) {
	if ctrl.cache == nil {
		return
	}

	if err := ctrl.cache.Ping(ctx); err != nil {
		logger.Error("Cache health check failed", "error", err)
	}
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	if ctrl.db == nil {
		return false
	}

	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return false
	}

	return sqlDB.PingContext(ctx) == nil
}
