package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
)

// FeedbackRepository appends entries under feedback:<millis>_<passenger>
type FeedbackRepository struct {
	store  kvstore.Store
	logger *logger.Logger
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(store kvstore.Store, log *logger.Logger) *FeedbackRepository {
	return &FeedbackRepository{store: store, logger: log}
}

// Append refuses to overwrite an existing entry. The existence check and the
// write are two store calls; the key embeds the passenger id so only the same
// passenger submitting twice in one millisecond can race.
func (r *FeedbackRepository) Append(ctx context.Context, f *feedback.Feedback) error {
	_, err := r.store.Get(ctx, f.ID)
	switch {
	case err == nil:
		return feedback.ErrDuplicate
	case !errors.Is(err, kvstore.ErrNotFound):
		return err
	}
	return kvstore.SetJSON(ctx, r.store, f.ID, f)
}

func (r *FeedbackRepository) List(ctx context.Context) ([]*feedback.Feedback, error) {
	entries, err := r.store.ScanPrefix(ctx, feedback.KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]*feedback.Feedback, 0, len(entries))
	for _, e := range entries {
		var f feedback.Feedback
		if err := json.Unmarshal(e.Value, &f); err != nil {
			r.logger.Warn("Skipping undecodable feedback", logger.String("key", e.Key), logger.Err(err))
			continue
		}
		out = append(out, &f)
	}
	return out, nil
}
