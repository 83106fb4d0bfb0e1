package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/pkg/enums"
)

// Order is a placed medicine order. The pricing columns are a snapshot of the
// bill computed at checkout; they are never recomputed afterwards.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	OrderNumber         string              `gorm:"column:order_number;not null;uniqueIndex" json:"orderNumber"`
	Status              enums.OrderStatus   `gorm:"column:status;not null;default:confirmed" json:"status"`
	Subtotal            int                 `gorm:"column:subtotal;not null" json:"subtotal"`
	Discount            int                 `gorm:"column:discount;not null;default:0" json:"discount"`
	DeliveryFee         int                 `gorm:"column:delivery_fee;not null;default:0" json:"deliveryFee"`
	Total               int                 `gorm:"column:total;not null" json:"total"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;not null" json:"paymentMethod"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;not null;default:pending" json:"paymentStatus"`
	DeliveryAddressID   *uuid.UUID          `gorm:"column:delivery_address_id;type:uuid" json:"deliveryAddressId,omitempty"`
	DeliveryAddressText string              `gorm:"column:delivery_address_text;not null" json:"deliveryAddressText"`
	EstimatedDelivery   *time.Time          `gorm:"column:estimated_delivery" json:"estimatedDelivery,omitempty"`
	DeliveredAt         *time.Time          `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusEvents        []OrderStatusEvent  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"statusEvents,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
