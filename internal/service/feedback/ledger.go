package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/internal/identity"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
)

// Recorder receives a count per accepted rating
type Recorder interface {
	RecordFeedback(rating int)
}

// Service is the append-only feedback ledger
type Service struct {
	repo     feedback.Repository
	logger   *logger.Logger
	recorder Recorder
	now      func() time.Time
}

// NewService creates a new feedback ledger. recorder may be nil.
func NewService(repo feedback.Repository, log *logger.Logger, recorder Recorder) *Service {
	return &Service{
		repo:     repo,
		logger:   log.Named("feedback"),
		recorder: recorder,
		now:      time.Now,
	}
}

// RecordFeedback appends one immutable rating from the caller
func (s *Service) RecordFeedback(ctx context.Context, id identity.Identity, in feedback.Input) (*feedback.Feedback, error) {
	if id.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := feedback.ValidateRating(in.Rating); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	now := s.now().UTC()
	f := &feedback.Feedback{
		ID:          feedback.Key(now, id.UserID),
		PassengerID: id.UserID,
		DriverID:    strings.TrimSpace(in.DriverID),
		PlateNumber: strings.TrimSpace(in.PlateNumber),
		Rating:      in.Rating,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   now,
	}

	if err := s.repo.Append(ctx, f); err != nil {
		if errors.Is(err, feedback.ErrDuplicate) {
			return nil, apperrors.Conflict("Feedback already submitted, try again", err)
		}
		s.logger.Error("Failed to store feedback",
			logger.String("passenger_id", id.UserID),
			logger.Err(err),
		)
		return nil, apperrors.StoreUnavailable("Failed to submit feedback", err)
	}

	s.logger.Info("Feedback recorded",
		logger.String("feedback_id", f.ID),
		logger.Int("rating", f.Rating),
	)
	if s.recorder != nil {
		s.recorder.RecordFeedback(f.Rating)
	}
	return f, nil
}
