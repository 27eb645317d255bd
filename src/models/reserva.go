package models

import (
	"hms/src/types"
	"time"
)

type Reserva struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	FechaInicio     time.Time `gorm:"not null" json:"fechaInicio"`
	FechaFin        time.Time `gorm:"not null" json:"fechaFin"`
	Costo           float64   `json:"costo"`
	MotivoViaje     string    `json:"motivoViaje,omitempty"`
	MedioTransporte string    `json:"medioTransporte,omitempty"`
	HabitacionID    uint      `gorm:"not null;index" json:"habitacionId"`
	HuespedID       uint      `gorm:"not null;index" json:"huespedId"`
	FacturaID       *uint     `json:"facturaId,omitempty"`

	Habitacion           *Habitacion          `gorm:"foreignKey:HabitacionID" json:"habitacion,omitempty"`
	Huesped              *Huesped             `gorm:"foreignKey:HuespedID" json:"huesped,omitempty"`
	Factura              *Factura             `gorm:"foreignKey:FacturaID" json:"factura,omitempty"`
	HuespedesSecundarios []*HuespedSecundario `gorm:"many2many:reserva_huespedes_secundarios;" json:"huespedesSecundarios,omitempty"`

	types.Timestamps
}

type Factura struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Total        float64   `gorm:"not null" json:"total"`
	FechaFactura time.Time `json:"fechaFactura"`
	HuespedID    uint      `gorm:"not null;index" json:"huespedId"`

	Huesped *Huesped `gorm:"foreignKey:HuespedID" json:"huesped,omitempty"`

	types.Timestamps
}

type Formulario struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	HuespedID      uint   `gorm:"not null;index" json:"huespedId"`
	ReservaID      uint   `gorm:"not null;index" json:"reservaId"`
	SubidoTra      bool   `gorm:"not null;default:false" json:"subidoTra"`
	TraID          *int64 `json:"traId,omitempty"`
	IntentosTra    int    `gorm:"not null;default:0" json:"intentosTra"`
	UltimoErrorTra string `json:"ultimoErrorTra,omitempty"`

	Huesped *Huesped `gorm:"foreignKey:HuespedID" json:"huesped,omitempty"`
	Reserva *Reserva `gorm:"foreignKey:ReservaID" json:"reserva,omitempty"`

	types.Timestamps
}
