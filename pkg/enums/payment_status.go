package enums

// PaymentStatus tracks whether an order has been paid. Cash-on-delivery
// orders stay pending until handover.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentStatus.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}
