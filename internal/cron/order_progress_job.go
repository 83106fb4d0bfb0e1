package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/medirush/medirush-backend/internal/tracking"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/logger"
)

const orderSweepBatch = 100

type activeOrderLister interface {
	ListActive(ctx context.Context, limit int) ([]models.Order, error)
}

// OrderProgressJobParams configure the delivery catch-up sweep.
type OrderProgressJobParams struct {
	Logger    *logger.Logger
	Orders    activeOrderLister
	Mover     tracking.OrderMover
	Tracking  config.TrackingConfig
	BatchSize int
}

// NewOrderProgressJob builds the sweep that repairs orders whose lifecycle
// timers died with the process.
func NewOrderProgressJob(params OrderProgressJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders lister required")
	}
	if params.Mover == nil {
		return nil, fmt.Errorf("order mover required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = orderSweepBatch
	}
	return &orderProgressJob{
		logg:     params.Logger,
		orders:   params.Orders,
		mover:    params.Mover,
		tracking: params.Tracking,
		batch:    batch,
	}, nil
}

type orderProgressJob struct {
	logg     *logger.Logger
	orders   activeOrderLister
	mover    tracking.OrderMover
	tracking config.TrackingConfig
	batch    int
}

func (j *orderProgressJob) Name() string { return "order-progress" }

func (j *orderProgressJob) Run(ctx context.Context) error {
	active, err := j.orders.ListActive(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list active orders: %w", err)
	}

	var errs []error
	advanced := 0
	for i := range active {
		order := active[i]
		if err := tracking.CatchUp(ctx, j.mover, j.tracking, &order); err != nil {
			errs = append(errs, fmt.Errorf("catch up order %s: %w", order.ID, err))
			continue
		}
		advanced++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"active":   len(active),
		"advanced": advanced,
		"failed":   len(errs),
	})
	j.logg.Info(logCtx, "order progress sweep complete")
	return multierr.Combine(errs...)
}
