package services

import (
	"context"
	"hms/src/db"
	"hms/src/models"
	"log"

	"gorm.io/gorm"
)

type TrailService struct {
	db *gorm.DB
}

func NewTrailService(d *gorm.DB) *TrailService {
	return &TrailService{db: d}
}

// Record appends an entry. Failures are logged and never fail the caller.
func (s *TrailService) Record(ctx context.Context, tipo, initiator string, linkID uint) {
	if initiator == "" {
		initiator = "desconocido"
	}
	entry := models.TrailLog{Type: tipo, Initiator: initiator, LinkID: linkID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("[trail] Could not record %s for link %d: %s\n", tipo, linkID, err.Error())
	}
}

func (s *TrailService) ForLink(ctx context.Context, linkID uint) ([]models.TrailLog, error) {
	var entries []models.TrailLog
	err := s.db.WithContext(ctx).
		Where(&models.TrailLog{LinkID: linkID}).
		Order("created_at ASC").
		Find(&entries).
		Error
	if err != nil {
		return nil, db.ClassifyError(err, "list trail")
	}
	return entries, nil
}
