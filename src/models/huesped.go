package models

import (
	"hms/src/models/scopes"
	"hms/src/types"
	"time"

	"gorm.io/gorm"
)

type DatosPersonales struct {
	PrimerNombre      string    `gorm:"not null" json:"primerNombre"`
	SegundoNombre     string    `json:"segundoNombre,omitempty"`
	PrimerApellido    string    `gorm:"not null" json:"primerApellido"`
	SegundoApellido   string    `json:"segundoApellido,omitempty"`
	FechaNacimiento   time.Time `json:"fechaNacimiento"`
	Nacionalidad      string    `json:"nacionalidad"`
	PaisResidencia    string    `json:"paisResidencia"`
	CiudadResidencia  string    `json:"ciudadResidencia"`
	PaisProcedencia   string    `json:"paisProcedencia,omitempty"`
	CiudadProcedencia string    `json:"ciudadProcedencia,omitempty"`
	Genero            string    `json:"genero"`
	Ocupacion         string    `json:"ocupacion,omitempty"`
	Telefono          string    `json:"telefono,omitempty"`
	Correo            string    `json:"correo,omitempty"`
}

func (d DatosPersonales) Nombres() string {
	if d.SegundoNombre == "" {
		return d.PrimerNombre
	}
	return d.PrimerNombre + " " + d.SegundoNombre
}

func (d DatosPersonales) Apellidos() string {
	if d.SegundoApellido == "" {
		return d.PrimerApellido
	}
	return d.PrimerApellido + " " + d.SegundoApellido
}

// Huesped is a primary guest, unique among live rows by document type and number.
type Huesped struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	TipoDocumento   string `gorm:"not null;uniqueIndex:idx_huespedes_documento,where:deleted_at IS NULL" json:"tipoDocumento"`
	NumeroDocumento string `gorm:"not null;uniqueIndex:idx_huespedes_documento,where:deleted_at IS NULL" json:"numeroDocumento"`
	DatosPersonales

	Reservas             []Reserva           `gorm:"foreignKey:HuespedID" json:"reservas,omitempty"`
	HuespedesSecundarios []HuespedSecundario `gorm:"foreignKey:HuespedID" json:"huespedesSecundarios,omitempty"`

	types.Timestamps
}

func (Huesped) TableName() string {
	return "huespedes"
}

// HuespedSecundario is a companion guest, owned by the primary guest of the
// latest reservation it joined. It may be attached to several reservations.
type HuespedSecundario struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	TipoDocumento   string `gorm:"not null;uniqueIndex:idx_huespedes_secundarios_documento,where:deleted_at IS NULL" json:"tipoDocumento"`
	NumeroDocumento string `gorm:"not null;uniqueIndex:idx_huespedes_secundarios_documento,where:deleted_at IS NULL" json:"numeroDocumento"`
	HuespedID       uint   `gorm:"not null;index" json:"huespedId"`
	DatosPersonales

	Reservas []*Reserva `gorm:"many2many:reserva_huespedes_secundarios;" json:"reservas,omitempty"`

	types.Timestamps
}

func (HuespedSecundario) TableName() string {
	return "huespedes_secundarios"
}

// LockHuesped reads a live primary guest and holds its row for the rest of the
// transaction.
func LockHuesped(tx *gorm.DB, id uint) (*Huesped, error) {
	var huesped Huesped
	if err := tx.Scopes(scopes.ForUpdate).First(&huesped, id).Error; err != nil {
		return nil, err
	}
	return &huesped, nil
}

func LockHuespedSecundario(tx *gorm.DB, id uint) (*HuespedSecundario, error) {
	var hs HuespedSecundario
	if err := tx.Scopes(scopes.ForUpdate).First(&hs, id).Error; err != nil {
		return nil, err
	}
	return &hs, nil
}
