package enums

import "fmt"

// Confidence grades how certain the analysis gateway was about an extracted
// prescription, driven by image clarity.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var validConfidences = []Confidence{
	ConfidenceHigh,
	ConfidenceMedium,
	ConfidenceLow,
}

// String implements fmt.Stringer.
func (c Confidence) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Confidence.
func (c Confidence) IsValid() bool {
	for _, candidate := range validConfidences {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConfidence converts raw input into a Confidence, defaulting unknown
// values to low rather than failing; gateway output is not trusted blindly.
func ParseConfidence(value string) (Confidence, error) {
	for _, candidate := range validConfidences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return ConfidenceLow, fmt.Errorf("invalid confidence %q", value)
}
