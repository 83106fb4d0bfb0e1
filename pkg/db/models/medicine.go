package models

import (
	"time"

	"github.com/google/uuid"
)

// Medicine is an orderable catalog item. Prices are whole rupees.
// Invariant: Price <= MRP.
type Medicine struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string    `gorm:"column:name;not null" json:"name"`
	GenericName          *string   `gorm:"column:generic_name" json:"genericName,omitempty"`
	Description          *string   `gorm:"column:description" json:"description,omitempty"`
	Manufacturer         *string   `gorm:"column:manufacturer" json:"manufacturer,omitempty"`
	Category             string    `gorm:"column:category;not null" json:"category"`
	Price                int       `gorm:"column:price;not null" json:"price"`
	MRP                  int       `gorm:"column:mrp;not null" json:"mrp"`
	IsOTC                bool      `gorm:"column:is_otc;not null;default:true" json:"isOtc"`
	RequiresPrescription bool      `gorm:"column:requires_prescription;not null;default:false" json:"requiresPrescription"`
	Unit                 *string   `gorm:"column:unit" json:"unit,omitempty"`
	ImageURL             *string   `gorm:"column:image_url" json:"imageUrl,omitempty"`
	StockQuantity        int       `gorm:"column:stock_quantity;not null;default:0" json:"stockQuantity"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
