package models

import (
	"hms/src/types"
	"strings"
	"time"
)

// LinkFormulario is an invitation to fill the check-in form. The signed token
// is the last path segment of URL and embeds the row's own ID.
type LinkFormulario struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	URL              string    `gorm:"not null;default:''" json:"url"`
	Vencimiento      time.Time `json:"vencimiento"`
	Completado       bool      `gorm:"not null;default:false" json:"completado"`
	Expirado         bool      `gorm:"not null;default:false" json:"expirado"`
	NumeroHabitacion int       `gorm:"not null" json:"numeroHabitacion"`
	FechaInicio      time.Time `json:"fechaInicio"`
	FechaFin         time.Time `json:"fechaFin"`
	Costo            float64   `json:"costo"`
	FormularioID     *uint     `json:"formularioId,omitempty"`

	// Estado is derived on read and never stored.
	Estado types.LinkStatus `gorm:"-" json:"estado,omitempty"`

	Formulario *Formulario `gorm:"foreignKey:FormularioID" json:"formulario,omitempty"`

	types.Timestamps
}

func (l *LinkFormulario) Token() string {
	if l.URL == "" {
		return ""
	}
	i := strings.LastIndex(l.URL, "/")
	return l.URL[i+1:]
}

func (l *LinkFormulario) EstadoEn(now time.Time) types.LinkStatus {
	if l.Completado {
		return types.LINK_COMPLETED
	}
	if l.Expirado || now.After(l.Vencimiento) {
		return types.LINK_EXPIRED
	}
	return types.LINK_PENDING
}
