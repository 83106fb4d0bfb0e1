package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedAddress is a delivery address on the user's address book. At most one
// address per user carries IsDefault; the repo enforces this on write.
type SavedAddress struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Label     string    `gorm:"column:label;not null" json:"label"`
	Line1     string    `gorm:"column:line1;not null" json:"line1"`
	Line2     *string   `gorm:"column:line2" json:"line2,omitempty"`
	City      string    `gorm:"column:city;not null" json:"city"`
	State     string    `gorm:"column:state;not null" json:"state"`
	Pincode   string    `gorm:"column:pincode;not null" json:"pincode"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false" json:"isDefault"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// FullText renders the address as a single line for the order snapshot.
func (a SavedAddress) FullText() string {
	out := a.Line1
	if a.Line2 != nil && *a.Line2 != "" {
		out += ", " + *a.Line2
	}
	return out + ", " + a.City + ", " + a.State + " " + a.Pincode
}
