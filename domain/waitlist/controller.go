package waitlist

import (
	"net/http"
	"time"

	"github.com/videoscale/waitlist-api/config/router"
	"github.com/videoscale/waitlist-api/internal/log"
	"github.com/videoscale/waitlist-api/pkg/constants"
	apperrors "github.com/videoscale/waitlist-api/pkg/errors"
	"github.com/videoscale/waitlist-api/pkg/ratelimit"
	"gorm.io/gorm"
)

func NewWaitlistController(
	db *gorm.DB,
	logger *log.Logger,
) *router.RESTController {

	return router.NewRESTController(
		"WaitlistController",
		"/api/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewWaitlistRepository(db)
			service := NewWaitlistService(logger, repository)

			submitLimiter := createSubmitRateLimiter()

			rs.AddPostHandler(c, submitLimiter, "", submitHandler(service))
			rs.AddGetHandler(c, nil, "", listEntriesHandler(service))
			rs.AddGetHandler(c, nil, "/stats", statsHandler(service))
		},
	)
}

func createSubmitRateLimiter() ratelimit.RateLimiter {
	config := &ratelimit.RateLimitConfig{
		Requests: constants.SubmitRequestsPerMinute,
		Window:   time.Minute,
		Redis:    nil, // per-route limiter stays in-memory; the global one may use Redis
		Logger:   nil,
	}

	return ratelimit.NewRateLimiter(config)
}

func submitHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			// Detail stays in the logs; the wire error is always the same.
			logger.Error("Failed to bind waitlist request",
				"error", err,
				"fields", apperrors.FormatValidationErrors(err, req))
			return router.BadRequestResult("Invalid email address", nil)
		}

		meta := RequestMeta{
			IPAddress: ctx.ClientIP(),
			UserAgent: ctx.Request.UserAgent(),
		}

		outcome, err := service.Submit(ctx.Request.Context(), &req, meta)
		if err != nil {
			return errorResultFrom(err)
		}

		if outcome.AlreadyRegistered {
			return router.OKResult(ToWaitlistEntryResponse(outcome.Entry), "Email already registered")
		}

		return router.CreatedResult(ToCreatedEntryResponse(outcome.Entry), "Email added to waitlist successfully")
	}
}

func listEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		entries, err := service.GetAllEntries(ctx.Request.Context())
		if err != nil {
			return errorResultFrom(err)
		}

		return router.ListResult(len(entries), entries)
	}
}

func statsHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		stats, err := service.GetStats(ctx.Request.Context())
		if err != nil {
			return errorResultFrom(err)
		}

		return &router.ServiceResult{
			StatusCode: http.StatusOK,
			Extra:      map[string]any{"stats": stats},
		}
	}
}

// errorResultFrom maps a service error to the wire envelope. Anything at or
// above 500 is returned opaque; the diagnostic detail stays in the logs.
func errorResultFrom(err error) *router.ServiceResult {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		return router.InternalServerErrorResult("Internal server error")
	}

	return router.ErrorResult(status, apperrors.GetHumanReadableMessage(err), nil)
}
