package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is a person to notify during an emergency.
type EmergencyContact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Phone     string    `gorm:"column:phone;not null" json:"phone"`
	Relation  string    `gorm:"column:relation;not null" json:"relation"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false" json:"isPrimary"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
