// Package pricing computes the checkout bill from a cart subtotal.
// All amounts are whole rupees.
package pricing

import "github.com/shopspring/decimal"

const (
	// DiscountRate is the flat order discount applied to every bill.
	DiscountRate = "0.05"

	// FreeDeliveryThreshold is the subtotal above which delivery is free.
	// A subtotal of exactly 199 still pays the fee.
	FreeDeliveryThreshold = 199

	// DeliveryFee is the flat fee charged below the free-delivery threshold.
	DeliveryFee = 29
)

var discountRate = decimal.RequireFromString(DiscountRate)

// Breakdown is the priced bill for a cart.
type Breakdown struct {
	Subtotal    int `json:"subtotal"`
	Discount    int `json:"discount"`
	DeliveryFee int `json:"deliveryFee"`
	GrandTotal  int `json:"grandTotal"`
}

// Compute prices a subtotal. The discount is 5% rounded half-up to the
// nearest rupee, and delivery is free only when the subtotal exceeds the
// threshold. A zero subtotal still carries the delivery fee; checkout gates
// on a non-empty cart, so that breakdown is only ever displayed.
func Compute(subtotal int) Breakdown {
	if subtotal < 0 {
		subtotal = 0
	}

	discount := int(decimal.NewFromInt(int64(subtotal)).Mul(discountRate).Round(0).IntPart())

	fee := DeliveryFee
	if subtotal > FreeDeliveryThreshold {
		fee = 0
	}

	return Breakdown{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: fee,
		GrandTotal:  subtotal - discount + fee,
	}
}
