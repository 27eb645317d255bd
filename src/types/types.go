package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateLinkRequestBody struct {
	NumeroHabitacion int     `json:"numeroHabitacion" binding:"required,gt=0"`
	FechaInicio      string  `json:"fechaInicio" binding:"required,fechaiso"`
	FechaFin         string  `json:"fechaFin" binding:"required,fechaiso,gtdate=FechaInicio"`
	Costo            float64 `json:"costo" binding:"required,gt=0"`
	Email            string  `json:"email,omitempty" binding:"omitempty,email"`
}

type LinkQueryFilters struct {
	Completado *bool `form:"completado" binding:"omitempty"`
	Expirado   *bool `form:"expirado" binding:"omitempty"`
}

type HuespedRequestBody struct {
	TipoDocumento     string `json:"tipoDocumento" binding:"required,oneof=CC CE TI PASAPORTE PEP PPT"`
	NumeroDocumento   string `json:"numeroDocumento" binding:"required,min=3,max=20"`
	PrimerNombre      string `json:"primerNombre" binding:"required"`
	SegundoNombre     string `json:"segundoNombre,omitempty"`
	PrimerApellido    string `json:"primerApellido" binding:"required"`
	SegundoApellido   string `json:"segundoApellido,omitempty"`
	FechaNacimiento   string `json:"fechaNacimiento" binding:"required,fechaiso"`
	Nacionalidad      string `json:"nacionalidad" binding:"required"`
	PaisResidencia    string `json:"paisResidencia" binding:"required"`
	CiudadResidencia  string `json:"ciudadResidencia" binding:"required"`
	PaisProcedencia   string `json:"paisProcedencia,omitempty"`
	CiudadProcedencia string `json:"ciudadProcedencia,omitempty"`
	Genero            string `json:"genero" binding:"required,oneof=MASCULINO FEMENINO OTRO"`
	Ocupacion         string `json:"ocupacion,omitempty"`
	Telefono          string `json:"telefono,omitempty"`
	Correo            string `json:"correo,omitempty" binding:"omitempty,email"`
}

type CreateFormularioRequestBody struct {
	Huesped         HuespedRequestBody   `json:"huesped" binding:"required"`
	Acompanantes    []HuespedRequestBody `json:"acompanantes,omitempty" binding:"omitempty,dive"`
	MotivoViaje     string               `json:"motivoViaje" binding:"required"`
	MedioTransporte string               `json:"medioTransporte,omitempty"`
	RegistrarEnTra  bool                 `json:"registrarEnTra"`
}

type LinkStatus string

const (
	LINK_PENDING   LinkStatus = "pendiente"
	LINK_COMPLETED LinkStatus = "completado"
	LINK_EXPIRED   LinkStatus = "expirado"
)

type TraStatus string

const (
	TRA_SKIPPED    TraStatus = "omitido"
	TRA_REGISTERED TraStatus = "registrado"
	TRA_DEGRADED   TraStatus = "degradado"
)

type HabitacionEstado string

const (
	HABITACION_LIBRE         HabitacionEstado = "LIBRE"
	HABITACION_OCUPADO       HabitacionEstado = "OCUPADO"
	HABITACION_MANTENIMIENTO HabitacionEstado = "MANTENIMIENTO"
)
