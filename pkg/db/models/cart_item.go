package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a user's active cart: a medicine plus a quantity.
// There is at most one row per (user, medicine); quantity is always >= 1,
// rows are deleted instead of being zeroed.
type CartItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_medicine" json:"userId"`
	MedicineID uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;uniqueIndex:idx_cart_user_medicine" json:"medicineId"`
	Quantity   int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Medicine   *Medicine `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
