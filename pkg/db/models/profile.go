package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the user-editable identity and medical basics shown on the
// profile screen.
type Profile struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"userId"`
	FullName    *string    `gorm:"column:full_name" json:"fullName,omitempty"`
	Phone       *string    `gorm:"column:phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      *string    `gorm:"column:gender" json:"gender,omitempty"`
	BloodGroup  *string    `gorm:"column:blood_group" json:"bloodGroup,omitempty"`
	AvatarURL   *string    `gorm:"column:avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
