package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	"github.com/medirush/medirush-backend/pkg/logger"
)

type fakeOrderLister struct {
	orders []models.Order
	err    error
}

func (f *fakeOrderLister) ListActive(ctx context.Context, limit int) ([]models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type recordingMover struct {
	statuses map[uuid.UUID]enums.OrderStatus
	events   int
}

func newRecordingMover() *recordingMover {
	return &recordingMover{statuses: map[uuid.UUID]enums.OrderStatus{}}
}

func (m *recordingMover) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (bool, error) {
	if m.statuses[orderID] != from {
		return false, nil
	}
	m.statuses[orderID] = to
	return true, nil
}

func (m *recordingMover) AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	m.events++
	return nil
}

func trackingConfig() config.TrackingConfig {
	return config.TrackingConfig{
		PreparingAfter: 3 * time.Second,
		PickedAfter:    5 * time.Second,
		DeliveredAfter: 7 * time.Second,
	}
}

func newProgressJob(t *testing.T, lister *fakeOrderLister, mover *recordingMover) Job {
	t.Helper()
	job, err := NewOrderProgressJob(OrderProgressJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Orders:   lister,
		Mover:    mover,
		Tracking: trackingConfig(),
	})
	if err != nil {
		t.Fatalf("NewOrderProgressJob: %v", err)
	}
	return job
}

func TestOrderProgressJobAdvancesStaleOrders(t *testing.T) {
	orderID := uuid.New()
	lister := &fakeOrderLister{orders: []models.Order{{
		ID:        orderID,
		Status:    enums.OrderStatusConfirmed,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}}}
	mover := newRecordingMover()
	mover.statuses[orderID] = enums.OrderStatusConfirmed

	job := newProgressJob(t, lister, mover)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if mover.statuses[orderID] != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", mover.statuses[orderID])
	}
	if mover.events != 3 {
		t.Fatalf("expected 3 status events, got %d", mover.events)
	}
}

func TestOrderProgressJobLeavesFreshOrders(t *testing.T) {
	orderID := uuid.New()
	lister := &fakeOrderLister{orders: []models.Order{{
		ID:        orderID,
		Status:    enums.OrderStatusConfirmed,
		CreatedAt: time.Now().UTC(),
	}}}
	mover := newRecordingMover()
	mover.statuses[orderID] = enums.OrderStatusConfirmed

	job := newProgressJob(t, lister, mover)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if mover.statuses[orderID] != enums.OrderStatusConfirmed {
		t.Fatalf("fresh order must stay confirmed, got %s", mover.statuses[orderID])
	}
}

func TestOrderProgressJobPropagatesListErrors(t *testing.T) {
	lister := &fakeOrderLister{err: errors.New("boom")}
	job := newProgressJob(t, lister, newRecordingMover())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
