package waitlist

import (
	"github.com/videoscale/waitlist-api/internal/models"
	"github.com/videoscale/waitlist-api/pkg/constants"
)

type JoinWaitlistRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Timestamp string `json:"timestamp" binding:"omitempty,max=64"`
	Source    string `json:"source" binding:"omitempty,max=255"`
}

// RequestMeta carries fields captured from the inbound request at write
// time. Diagnostic only; never part of deduplication.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type WaitlistEntryResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	CreatedAt string `json:"created_at"`
}

// CreatedEntryResponse is the trimmed body returned on first registration.
type CreatedEntryResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

// RecentSignup projects an entry for the stats view; ip_address and
// user_agent are deliberately withheld here.
type RecentSignup struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

type StatsResponse struct {
	Total  int64          `json:"total"`
	Today  int64          `json:"today"`
	Recent []RecentSignup `json:"recent"`
}

// SubmitOutcome distinguishes a fresh registration from an absorbed
// duplicate; both are successes.
type SubmitOutcome struct {
	Entry             *models.WaitlistEntry
	AlreadyRegistered bool
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:        entry.ID,
		Email:     entry.Email,
		Timestamp: entry.Timestamp,
		Source:    entry.Source,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func ToCreatedEntryResponse(entry *models.WaitlistEntry) CreatedEntryResponse {
	if entry == nil {
		return CreatedEntryResponse{}
	}
	return CreatedEntryResponse{
		ID:        entry.ID,
		Email:     entry.Email,
		Timestamp: entry.Timestamp,
	}
}

func ToRecentSignup(entry *models.WaitlistEntry) RecentSignup {
	if entry == nil {
		return RecentSignup{}
	}
	return RecentSignup{
		Email:     entry.Email,
		Timestamp: entry.Timestamp,
		Source:    entry.Source,
	}
}
