package enums

import "fmt"

// PaymentMethod identifies how the buyer chose to pay at checkout.
type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodUPI,
	PaymentMethodCard,
	PaymentMethodCOD,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
