package scopes

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithIDs(ids ...uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", ids)
	}
}

func Unconsumed(db *gorm.DB) *gorm.DB {
	return db.Where("completado = ?", false)
}

func NotUploadedToTra(db *gorm.DB) *gorm.DB {
	return db.Where("subido_tra = ?", false)
}

func ExpiredBefore(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expirado = ?", false).Where("vencimiento < ?", t)
	}
}

// ForUpdate holds the selected rows until the transaction ends. SQLite has no
// row locks; it serializes writers on its own.
func ForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
