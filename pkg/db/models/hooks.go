package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeforeCreate hooks assign UUIDs client-side so inserts behave the same on
// Postgres and the sqlite driver used in tests.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *User) BeforeCreate(tx *gorm.DB) error             { ensureID(&m.ID); return nil }
func (m *Profile) BeforeCreate(tx *gorm.DB) error          { ensureID(&m.ID); return nil }
func (m *Medicine) BeforeCreate(tx *gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *CartItem) BeforeCreate(tx *gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *Order) BeforeCreate(tx *gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *OrderItem) BeforeCreate(tx *gorm.DB) error        { ensureID(&m.ID); return nil }
func (m *OrderStatusEvent) BeforeCreate(tx *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *SavedAddress) BeforeCreate(tx *gorm.DB) error     { ensureID(&m.ID); return nil }
func (m *EmergencyContact) BeforeCreate(tx *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *MedicalCondition) BeforeCreate(tx *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Allergy) BeforeCreate(tx *gorm.DB) error          { ensureID(&m.ID); return nil }
func (m *Hospital) BeforeCreate(tx *gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *Doctor) BeforeCreate(tx *gorm.DB) error           { ensureID(&m.ID); return nil }
