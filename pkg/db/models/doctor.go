package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Doctor is a directory entry for on-call consultations.
type Doctor struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string         `gorm:"column:name;not null" json:"name"`
	Specialty       string         `gorm:"column:specialty;not null" json:"specialty"`
	Rating          float64        `gorm:"column:rating;not null;default:0" json:"rating"`
	ExperienceYears int            `gorm:"column:experience_years;not null;default:0" json:"experienceYears"`
	Languages       pq.StringArray `gorm:"column:languages;type:text[]" json:"languages"`
	ConsultationFee int            `gorm:"column:consultation_fee;not null;default:0" json:"consultationFee"`
	Available       bool           `gorm:"column:available;not null;default:true" json:"available"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
