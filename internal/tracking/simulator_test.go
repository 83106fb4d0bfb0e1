package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
)

type fakeMover struct {
	mu     sync.Mutex
	status map[uuid.UUID]enums.OrderStatus
	events []models.OrderStatusEvent
}

func newFakeMover() *fakeMover {
	return &fakeMover{status: map[uuid.UUID]enums.OrderStatus{}}
}

func (f *fakeMover) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[orderID] != from {
		return false, nil
	}
	f.status[orderID] = to
	return true, nil
}

func (f *fakeMover) AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeMover) currentStatus(orderID uuid.UUID) enums.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[orderID]
}

func (f *fakeMover) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func fastConfig() config.TrackingConfig {
	return config.TrackingConfig{
		PreparingAfter: 10 * time.Millisecond,
		PickedAfter:    20 * time.Millisecond,
		DeliveredAfter: 30 * time.Millisecond,
	}
}

func waitForStatus(t *testing.T, mover *fakeMover, orderID uuid.UUID, want enums.OrderStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mover.currentStatus(orderID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("order never reached %s, stuck at %s", want, mover.currentStatus(orderID))
}

func TestSimulatorRunsFullLifecycle(t *testing.T) {
	mover := newFakeMover()
	orderID := uuid.New()
	mover.status[orderID] = enums.OrderStatusConfirmed

	sim := NewSimulator(mover, fastConfig(), nil)
	defer sim.Shutdown()

	sim.Start(orderID, time.Now())
	waitForStatus(t, mover, orderID, enums.OrderStatusDelivered)

	if mover.eventCount() != 3 {
		t.Fatalf("expected 3 status events, got %d", mover.eventCount())
	}
}

func TestAdvanceIsCompareAndSet(t *testing.T) {
	mover := newFakeMover()
	orderID := uuid.New()
	mover.status[orderID] = enums.OrderStatusPicked

	// Order already moved past preparing; this must be a no-op.
	if err := Advance(context.Background(), mover, orderID, enums.OrderStatusPreparing); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if got := mover.currentStatus(orderID); got != enums.OrderStatusPicked {
		t.Fatalf("expected status to stay picked, got %s", got)
	}
	if mover.eventCount() != 0 {
		t.Fatalf("expected no events for skipped transition, got %d", mover.eventCount())
	}
}

func TestAdvanceRecordsMessage(t *testing.T) {
	mover := newFakeMover()
	orderID := uuid.New()
	mover.status[orderID] = enums.OrderStatusConfirmed

	if err := Advance(context.Background(), mover, orderID, enums.OrderStatusPreparing); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if mover.eventCount() != 1 {
		t.Fatalf("expected one event, got %d", mover.eventCount())
	}
	event := mover.events[0]
	if event.Status != enums.OrderStatusPreparing {
		t.Fatalf("unexpected event status %s", event.Status)
	}
	if event.Message == nil || *event.Message != StatusMessage(enums.OrderStatusPreparing) {
		t.Fatalf("unexpected event message %v", event.Message)
	}
}

func TestExpectedStatus(t *testing.T) {
	cfg := config.TrackingConfig{
		PreparingAfter: 3 * time.Second,
		PickedAfter:    5 * time.Second,
		DeliveredAfter: 7 * time.Second,
	}
	placedAt := time.Now()

	cases := []struct {
		age  time.Duration
		want enums.OrderStatus
	}{
		{age: 0, want: enums.OrderStatusConfirmed},
		{age: 2 * time.Second, want: enums.OrderStatusConfirmed},
		{age: 3 * time.Second, want: enums.OrderStatusPreparing},
		{age: 5 * time.Second, want: enums.OrderStatusPicked},
		{age: time.Hour, want: enums.OrderStatusDelivered},
	}

	for _, tc := range cases {
		if got := ExpectedStatus(cfg, placedAt, placedAt.Add(tc.age)); got != tc.want {
			t.Fatalf("age %s: expected %s, got %s", tc.age, tc.want, got)
		}
	}
}

func TestCatchUpWalksEachStage(t *testing.T) {
	mover := newFakeMover()
	orderID := uuid.New()
	mover.status[orderID] = enums.OrderStatusConfirmed

	order := &models.Order{
		ID:        orderID,
		Status:    enums.OrderStatusConfirmed,
		CreatedAt: time.Now().Add(-time.Hour),
	}

	if err := CatchUp(context.Background(), mover, fastConfig(), order); err != nil {
		t.Fatalf("CatchUp returned error: %v", err)
	}
	if got := mover.currentStatus(orderID); got != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered after catch-up, got %s", got)
	}
	if mover.eventCount() != 3 {
		t.Fatalf("expected an event per stage, got %d", mover.eventCount())
	}
}

func TestStartIsIdempotentPerOrder(t *testing.T) {
	mover := newFakeMover()
	orderID := uuid.New()
	mover.status[orderID] = enums.OrderStatusConfirmed

	sim := NewSimulator(mover, fastConfig(), nil)
	defer sim.Shutdown()

	placedAt := time.Now()
	sim.Start(orderID, placedAt)
	sim.Start(orderID, placedAt)

	waitForStatus(t, mover, orderID, enums.OrderStatusDelivered)
	// Double-start must not double the event stream.
	if mover.eventCount() != 3 {
		t.Fatalf("expected 3 events, got %d", mover.eventCount())
	}
}
