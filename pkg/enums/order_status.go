package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of a placed order. The sequence
// is strictly linear: confirmed, preparing, picked, delivered.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusPicked    OrderStatus = "picked"
	OrderStatusDelivered OrderStatus = "delivered"
)

// orderStatusSequence is the only legal progression; no skips, no reversals.
var orderStatusSequence = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusPicked,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range orderStatusSequence {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered
}

// Next returns the following status in the sequence, or false when the
// status is terminal.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, candidate := range orderStatusSequence {
		if candidate == s && i+1 < len(orderStatusSequence) {
			return orderStatusSequence[i+1], true
		}
	}
	return "", false
}

// CanTransitionTo reports whether target is the immediate successor of s.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	next, ok := s.Next()
	return ok && next == target
}

// OrderStatusSequence returns the full linear progression in order.
func OrderStatusSequence() []OrderStatus {
	seq := make([]OrderStatus, len(orderStatusSequence))
	copy(seq, orderStatusSequence)
	return seq
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderStatusSequence {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
