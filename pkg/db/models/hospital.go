package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Hospital is a directory entry for nearby emergency care.
type Hospital struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	Address           string         `gorm:"column:address;not null" json:"address"`
	Phone             string         `gorm:"column:phone;not null" json:"phone"`
	DistanceKM        float64        `gorm:"column:distance_km;not null" json:"distanceKm"`
	Rating            float64        `gorm:"column:rating;not null;default:0" json:"rating"`
	EmergencyServices pq.StringArray `gorm:"column:emergency_services;type:text[]" json:"emergencyServices"`
	BedsAvailable     int            `gorm:"column:beds_available;not null;default:0" json:"bedsAvailable"`
	IsOpen24x7        bool           `gorm:"column:is_open_24x7;not null;default:false" json:"isOpen24x7"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
