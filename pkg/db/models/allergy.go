package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/enums"
)

// Allergy is a known allergy with a severity used to flag risky medicines.
type Allergy struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Allergen  string                `gorm:"column:allergen;not null" json:"allergen"`
	Severity  enums.AllergySeverity `gorm:"column:severity;not null" json:"severity"`
	Reaction  *string               `gorm:"column:reaction" json:"reaction,omitempty"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
