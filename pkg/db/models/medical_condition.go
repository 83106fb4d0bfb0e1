package models

import (
	"time"

	"github.com/google/uuid"
)

// MedicalCondition is one entry in the user's medical history.
type MedicalCondition struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	DiagnosedAt *time.Time `gorm:"column:diagnosed_at" json:"diagnosedAt,omitempty"`
	Notes       *string    `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
