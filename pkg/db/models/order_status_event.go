package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/enums"
)

// OrderStatusEvent is an append-only record of a lifecycle transition.
type OrderStatusEvent struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Status    enums.OrderStatus `gorm:"column:status;not null" json:"status"`
	Message   *string           `gorm:"column:message" json:"message,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
