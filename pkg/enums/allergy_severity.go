package enums

import "fmt"

// AllergySeverity grades a recorded allergy.
type AllergySeverity string

const (
	AllergySeverityMild     AllergySeverity = "mild"
	AllergySeverityModerate AllergySeverity = "moderate"
	AllergySeveritySevere   AllergySeverity = "severe"
)

var validAllergySeverities = []AllergySeverity{
	AllergySeverityMild,
	AllergySeverityModerate,
	AllergySeveritySevere,
}

// String implements fmt.Stringer.
func (s AllergySeverity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AllergySeverity.
func (s AllergySeverity) IsValid() bool {
	for _, candidate := range validAllergySeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAllergySeverity converts raw input into an AllergySeverity.
func ParseAllergySeverity(value string) (AllergySeverity, error) {
	for _, candidate := range validAllergySeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allergy severity %q", value)
}
