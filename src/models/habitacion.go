package models

import (
	"hms/src/types"

	"gorm.io/gorm"
)

type Habitacion struct {
	ID               uint                   `gorm:"primarykey" json:"id"`
	NumeroHabitacion int                    `gorm:"not null;uniqueIndex:idx_habitaciones_numero,where:deleted_at IS NULL" json:"numeroHabitacion"`
	Tipo             string                 `json:"tipo"`
	Estado           types.HabitacionEstado `gorm:"default:'LIBRE'" json:"estado"`
	Capacidad        int                    `json:"capacidad"`
	PrecioPorNoche   float64                `json:"precioPorNoche"`

	types.Timestamps
}

func (Habitacion) TableName() string {
	return "habitaciones"
}

// FindHabitacionByNumero looks up a live room by its door number.
func FindHabitacionByNumero(tx *gorm.DB, numero int) (*Habitacion, error) {
	var habitacion Habitacion
	err := tx.
		Model(&Habitacion{}).
		Where(&Habitacion{NumeroHabitacion: numero}).
		First(&habitacion).
		Error
	if err != nil {
		return nil, err
	}
	return &habitacion, nil
}
