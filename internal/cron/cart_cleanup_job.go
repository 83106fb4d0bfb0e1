package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/medirush/medirush-backend/pkg/logger"
)

const defaultCartMaxAge = 30 * 24 * time.Hour

type staleCartDeleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// CartCleanupJobParams configure the abandoned cart sweep.
type CartCleanupJobParams struct {
	Logger    *logger.Logger
	Carts     staleCartDeleter
	MaxAge    time.Duration
	BatchSize int
}

// NewCartCleanupJob builds the sweep that drops cart lines untouched for
// longer than the configured age.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart deleter required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCartMaxAge
	}
	return &cartCleanupJob{
		logg:   params.Logger,
		carts:  params.Carts,
		maxAge: maxAge,
		batch:  params.BatchSize,
		now:    time.Now,
	}, nil
}

type cartCleanupJob struct {
	logg   *logger.Logger
	carts  staleCartDeleter
	maxAge time.Duration
	batch  int
	now    func() time.Time
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

func (j *cartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	deleted, err := j.carts.DeleteOlderThan(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("cart cleanup: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "cart cleanup complete")
	return nil
}
