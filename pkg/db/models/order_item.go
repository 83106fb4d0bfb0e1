package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one line of a placed order. Name and unit price are copied
// from the catalog at placement so later catalog edits cannot rewrite
// historical bills.
type OrderItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	MedicineID   uuid.UUID `gorm:"column:medicine_id;type:uuid;not null" json:"medicineId"`
	MedicineName string    `gorm:"column:medicine_name;not null" json:"medicineName"`
	Quantity     int       `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice    int       `gorm:"column:unit_price;not null" json:"unitPrice"`
	TotalPrice   int       `gorm:"column:total_price;not null" json:"totalPrice"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
