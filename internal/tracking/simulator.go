package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	"github.com/medirush/medirush-backend/pkg/logger"
)

// statusMessages are the customer-facing notes attached to each transition.
var statusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusConfirmed: "Order confirmed",
	enums.OrderStatusPreparing: "Pharmacy is preparing your order",
	enums.OrderStatusPicked:    "Rider picked up your order",
	enums.OrderStatusDelivered: "Order delivered",
}

// StatusMessage returns the customer-facing note for a lifecycle stage.
func StatusMessage(status enums.OrderStatus) string {
	return statusMessages[status]
}

// OrderMover is the slice of the orders store the simulator drives.
type OrderMover interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (bool, error)
	AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
}

// Simulator walks placed orders through the delivery lifecycle on a fixed
// schedule measured from placement. Transitions are compare-and-set, so a
// timer firing late or twice cannot skip a stage or regress one.
type Simulator struct {
	mover OrderMover
	cfg   config.TrackingConfig
	logg  *logger.Logger

	mu     sync.Mutex
	timers map[uuid.UUID][]*time.Timer
	closed bool
}

// NewSimulator builds a delivery simulator over the provided order store.
func NewSimulator(mover OrderMover, cfg config.TrackingConfig, logg *logger.Logger) *Simulator {
	return &Simulator{
		mover:  mover,
		cfg:    cfg,
		logg:   logg,
		timers: make(map[uuid.UUID][]*time.Timer),
	}
}

// StageOffsets returns each post-confirmation stage with its delay from
// placement, in lifecycle order.
func StageOffsets(cfg config.TrackingConfig) []struct {
	Status enums.OrderStatus
	After  time.Duration
} {
	return []struct {
		Status enums.OrderStatus
		After  time.Duration
	}{
		{Status: enums.OrderStatusPreparing, After: cfg.PreparingAfter},
		{Status: enums.OrderStatusPicked, After: cfg.PickedAfter},
		{Status: enums.OrderStatusDelivered, After: cfg.DeliveredAfter},
	}
}

// Start schedules the remaining lifecycle transitions for an order placed at
// placedAt. Stages whose deadline already passed fire immediately, in order.
func (s *Simulator) Start(orderID uuid.UUID, placedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, exists := s.timers[orderID]; exists {
		return
	}

	var timers []*time.Timer
	for _, stage := range StageOffsets(s.cfg) {
		stage := stage
		delay := time.Until(placedAt.Add(stage.After))
		if delay < 0 {
			delay = 0
		}
		timers = append(timers, time.AfterFunc(delay, func() {
			s.fire(orderID, stage.Status)
		}))
	}
	s.timers[orderID] = timers
}

// Stop cancels any pending transitions for the order.
func (s *Simulator) Stop(orderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(orderID)
}

// Shutdown cancels all pending transitions. In-flight firings complete; the
// cron sweep picks up anything left behind after a restart.
func (s *Simulator) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for orderID := range s.timers {
		s.stopLocked(orderID)
	}
}

func (s *Simulator) stopLocked(orderID uuid.UUID) {
	for _, timer := range s.timers[orderID] {
		timer.Stop()
	}
	delete(s.timers, orderID)
}

func (s *Simulator) fire(orderID uuid.UUID, target enums.OrderStatus) {
	ctx := context.Background()
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, orderID.String())
	}

	if err := Advance(ctx, s.mover, orderID, target); err != nil && s.logg != nil {
		s.logg.Error(ctx, "advancing order status", err)
	}

	if target.IsTerminal() {
		s.Stop(orderID)
	}
}

// Advance moves an order to the target status via its immediate predecessor.
// The compare-and-set update makes the call a no-op when the order already
// moved past the target.
func Advance(ctx context.Context, mover OrderMover, orderID uuid.UUID, target enums.OrderStatus) error {
	sequence := enums.OrderStatusSequence()
	var from enums.OrderStatus
	for i, status := range sequence {
		if status == target && i > 0 {
			from = sequence[i-1]
		}
	}
	if from == "" {
		return nil
	}

	now := time.Now().UTC()
	moved, err := mover.UpdateStatus(ctx, orderID, from, target, now)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}

	message := StatusMessage(target)
	return mover.AppendStatusEvent(ctx, &models.OrderStatusEvent{
		OrderID: orderID,
		Status:  target,
		Message: &message,
	})
}

// ExpectedStatus computes where an order placed at placedAt should be at
// the reference time.
func ExpectedStatus(cfg config.TrackingConfig, placedAt, now time.Time) enums.OrderStatus {
	age := now.Sub(placedAt)
	expected := enums.OrderStatusConfirmed
	for _, stage := range StageOffsets(cfg) {
		if age >= stage.After {
			expected = stage.Status
		}
	}
	return expected
}

// CatchUp advances an order stage by stage until it reaches the status its
// age implies. Used by the sweep to repair orders whose timers were lost to
// a process restart.
func CatchUp(ctx context.Context, mover OrderMover, cfg config.TrackingConfig, order *models.Order) error {
	expected := ExpectedStatus(cfg, order.CreatedAt, time.Now().UTC())

	current := order.Status
	for current != expected {
		next, ok := current.Next()
		if !ok {
			return nil
		}
		if err := Advance(ctx, mover, order.ID, next); err != nil {
			return err
		}
		current = next
	}
	return nil
}
