package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TRAIL_LINK_ISSUED       = "link.issued"
	TRAIL_LINK_REGENERATED  = "link.regenerated"
	TRAIL_LINK_REVOKED      = "link.revoked"
	TRAIL_BOOKING_CREATED   = "booking.created"
	TRAIL_BOOKING_REMOVED   = "booking.removed"
	TRAIL_INITIATOR_HUESPED = "huesped"
)

// TrailLog records who moved a link through its lifecycle. LinkID is kept as a
// plain column so entries outlive the link row.
type TrailLog struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Type      string    `gorm:"not null" json:"type"`
	Initiator string    `gorm:"not null" json:"initiator"`
	LinkID    uint      `gorm:"index" json:"linkId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (t *TrailLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
