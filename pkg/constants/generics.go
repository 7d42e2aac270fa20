package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindow is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// SubmitRequestsPerMinute caps waitlist submissions per client IP
	SubmitRequestsPerMinute = 30
)

// Waitlist intake constraints
const (
	// MaxEmailLength is the longest accepted email address (RFC 5321 limit)
	MaxEmailLength = 254
	// DefaultSignupSource tags entries whose campaign is unknown
	DefaultSignupSource = "unknown"
	// RecentSignupLimit is the number of entries in the stats recent view
	RecentSignupLimit = 5
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
