package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the opaque identity created on first successful OTP verification.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex" json:"phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
