package waitlist

import (
	"context"
	"net/mail"
	"time"

	"github.com/videoscale/waitlist-api/internal/log"
	"github.com/videoscale/waitlist-api/internal/models"
	"github.com/videoscale/waitlist-api/pkg/constants"
	apperrors "github.com/videoscale/waitlist-api/pkg/errors"
)

type WaitlistService interface {
	// Submit registers an email on the waitlist. Resubmitting a known email
	// is not an error: the existing entry is returned with the
	// AlreadyRegistered flag set and no write occurs.
	Submit(ctx context.Context, req *JoinWaitlistRequest, meta RequestMeta) (*SubmitOutcome, error)

	// GetAllEntries retrieves every entry, most recent first.
	GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error)

	// GetStats reports the total count, the count since local midnight, and
	// the most recent sign-ups projected to non-sensitive fields.
	GetStats(ctx context.Context) (*StatsResponse, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	now        func() time.Time
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository) WaitlistService {
	return &waitlistService{logger: logger, repository: repository, now: time.Now}
}

func (s *waitlistService) Submit(ctx context.Context, req *JoinWaitlistRequest, meta RequestMeta) (*SubmitOutcome, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received empty request")
		return nil, apperrors.NewInvalidRequestError("Invalid email address", nil)
	}

	// Validation happens before any store interaction.
	if !isValidEmail(req.Email) {
		logger.Error("Submit received invalid email")
		return nil, apperrors.NewInvalidRequestError("Invalid email address", nil)
	}

	existing, err := s.repository.FindEntryByEmail(ctx, req.Email)
	if err == nil {
		return &SubmitOutcome{Entry: existing, AlreadyRegistered: true}, nil
	}
	if apperrors.GetErrorType(err) != apperrors.ErrorTypeNotFound {
		logger.Error("Failed to look up waitlist entry", "error", err)
		return nil, err
	}

	entry := &models.WaitlistEntry{
		Email:     req.Email,
		Timestamp: req.Timestamp,
		Source:    req.Source,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if entry.Timestamp == "" {
		entry.Timestamp = s.now().Format(constants.RFC3339DateTimeFormat)
	}
	if entry.Source == "" {
		entry.Source = constants.DefaultSignupSource
	}

	created, err := s.repository.CreateEntry(ctx, entry)
	if err != nil {
		// Two concurrent submissions can both pass the lookup; the unique
		// index on email decides the winner and the loser is absorbed into
		// the duplicate-success path.
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeConflict {
			winner, findErr := s.repository.FindEntryByEmail(ctx, req.Email)
			if findErr == nil {
				return &SubmitOutcome{Entry: winner, AlreadyRegistered: true}, nil
			}
			logger.Error("Failed to resolve duplicate waitlist entry", "error", findErr)
			return nil, findErr
		}
		logger.Error("Failed to create waitlist entry", "error", err)
		return nil, err
	}

	logger.Info("New email added to waitlist", "source", created.Source)
	return &SubmitOutcome{Entry: created}, nil
}

func (s *waitlistService) GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to get all waitlist entries", "error", err)
		return nil, err
	}

	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}

	return responses, nil
}

func (s *waitlistService) GetStats(ctx context.Context) (*StatsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	total, err := s.repository.CountEntries(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		return nil, err
	}

	today, err := s.repository.CountEntriesSince(ctx, localMidnight(s.now()))
	if err != nil {
		logger.Error("Failed to count today's waitlist entries", "error", err)
		return nil, err
	}

	entries, err := s.repository.GetRecentEntries(ctx, constants.RecentSignupLimit)
	if err != nil {
		logger.Error("Failed to fetch recent waitlist entries", "error", err)
		return nil, err
	}

	recent := make([]RecentSignup, 0, len(entries))
	for _, entry := range entries {
		recent = append(recent, ToRecentSignup(entry))
	}

	return &StatsResponse{Total: total, Today: today, Recent: recent}, nil
}

// isValidEmail accepts a bare addr-spec of at most MaxEmailLength bytes.
// No normalization is applied; lookups are case-sensitive exact matches.
func isValidEmail(email string) bool {
	if email == "" || len(email) > constants.MaxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func localMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
