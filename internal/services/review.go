package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/records"
	"finsmart/internal/store"
)

type ReviewService struct {
	tables TableStore
	now    func() time.Time
	logger *log.Logger
}

func NewReviewService(tables TableStore, logger *log.Logger) *ReviewService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReviewService{tables: tables, now: time.Now, logger: logger.WithComponent(log.ComponentStore)}
}

// Submit stamps r with the current time and appends it.
func (s *ReviewService) Submit(ctx context.Context, r core.Review) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Text = strings.TrimSpace(r.Text)
	r.Time = s.now().UTC().Truncate(time.Second)

	reviews, err := store.AppendReview(s.tables.Load(ctx, records.Reviews), r)
	if err != nil {
		return err
	}
	if err := s.tables.Save(ctx, reviews); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Review submitted", "rating", r.Rating)
	return nil
}

// List returns all reviews, newest first.
func (s *ReviewService) List(ctx context.Context) []core.Review {
	t := s.tables.Load(ctx, records.Reviews)
	out := make([]core.Review, 0, t.Len())
	for i := range t.Rows {
		out = append(out, records.DecodeReview(t, i))
	}
	slices.SortStableFunc(out, func(a, b core.Review) int {
		return b.Time.Compare(a.Time)
	})
	return out
}
