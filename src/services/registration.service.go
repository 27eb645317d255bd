package services

import (
	"context"
	"errors"
	"hms/src/db"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

type CreateFormularioInput struct {
	Huesped         HuespedInput
	Acompanantes    []HuespedInput
	MotivoViaje     string
	MedioTransporte string
	RegistrarEnTra  bool
}

type CreateFormularioResult struct {
	Huesped              *models.Huesped             `json:"huesped"`
	Factura              *models.Factura             `json:"factura"`
	Reserva              *models.Reserva             `json:"reserva"`
	Formulario           *models.Formulario          `json:"formulario"`
	Link                 *models.LinkFormulario      `json:"link"`
	HuespedesSecundarios []*models.HuespedSecundario `json:"huespedesSecundarios"`
	TraStatus            types.TraStatus             `json:"traStatus"`
	TraError             string                      `json:"traError,omitempty"`
}

// RegistrationService turns a submitted check-in form into a booking.
type RegistrationService struct {
	db     *gorm.DB
	links  *LinkService
	guests *GuestService
	tra    *TraService
	now    func() time.Time
}

func NewRegistrationService(d *gorm.DB, links *LinkService, guests *GuestService, tra *TraService) *RegistrationService {
	return &RegistrationService{
		db:     d,
		links:  links,
		guests: guests,
		tra:    tra,
		now:    time.Now,
	}
}

// Create materializes the booking behind linkID. Only one call per link can
// succeed; later calls get a Conflict. The registry is contacted after commit
// and its failure only degrades the result.
func (s *RegistrationService) Create(ctx context.Context, in CreateFormularioInput, linkID uint) (*CreateFormularioResult, error) {
	var link models.LinkFormulario
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(linkID)).First(&link).Error; err != nil {
		return nil, db.ClassifyError(err, "find link")
	}
	if link.Completado {
		return nil, types.NewConflict("a formulario is already linked to link %d", linkID)
	}

	huesped, _, err := s.guests.FindOrCreate(ctx, in.Huesped)
	if err != nil {
		return nil, err
	}

	habitacion, err := models.FindHabitacionByNumero(s.db.WithContext(ctx), link.NumeroHabitacion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("habitacion %d not found", link.NumeroHabitacion)
		}
		return nil, db.ClassifyError(err, "find habitacion")
	}

	var result *CreateFormularioResult
	err = db.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var current models.LinkFormulario
		if err := tx.Scopes(scopes.WithID(linkID)).First(&current).Error; err != nil {
			return err
		}
		if current.Completado {
			return types.NewConflict("a formulario is already linked to link %d", linkID)
		}
		locked, err := s.guests.LockForBooking(tx, huesped, in.Huesped)
		if err != nil {
			return err
		}
		huesped = locked

		factura := models.Factura{
			Total:        current.Costo,
			FechaFactura: s.now(),
			HuespedID:    huesped.ID,
		}
		if err := tx.Create(&factura).Error; err != nil {
			return err
		}

		reserva := models.Reserva{
			FechaInicio:     current.FechaInicio,
			FechaFin:        current.FechaFin,
			Costo:           current.Costo,
			MotivoViaje:     in.MotivoViaje,
			MedioTransporte: in.MedioTransporte,
			HabitacionID:    habitacion.ID,
			HuespedID:       huesped.ID,
			FacturaID:       &factura.ID,
		}
		if err := tx.Omit("HuespedesSecundarios").Create(&reserva).Error; err != nil {
			return err
		}

		formulario := models.Formulario{
			HuespedID: huesped.ID,
			ReservaID: reserva.ID,
		}
		if err := tx.Create(&formulario).Error; err != nil {
			return err
		}

		res := tx.
			Model(&models.LinkFormulario{}).
			Scopes(scopes.WithID(linkID), scopes.Unconsumed).
			Updates(map[string]any{
				"completado":    true,
				"formulario_id": formulario.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflict("a formulario is already linked to link %d", linkID)
		}
		current.Completado = true
		current.FormularioID = &formulario.ID

		secundarios, err := s.guests.ResolveSecundarios(tx, huesped, in.Acompanantes)
		if err != nil {
			return err
		}
		if len(secundarios) > 0 {
			if err := tx.Model(&reserva).Association("HuespedesSecundarios").Append(secundarios); err != nil {
				return err
			}
		}

		reserva.Habitacion = habitacion
		result = &CreateFormularioResult{
			Huesped:              huesped,
			Factura:              &factura,
			Reserva:              &reserva,
			Formulario:           &formulario,
			Link:                 &current,
			HuespedesSecundarios: secundarios,
			TraStatus:            types.TRA_SKIPPED,
		}
		return nil
	})
	if err != nil {
		return nil, db.ClassifyError(err, "create formulario")
	}
	log.Printf("[registration] Link %d completed with formulario %d (reserva %d, %d acompanantes)\n",
		linkID, result.Formulario.ID, result.Reserva.ID, len(result.HuespedesSecundarios))

	if in.RegistrarEnTra && s.tra != nil && s.tra.Enabled() {
		s.registerInTra(ctx, result)
	}
	return result, nil
}

func (s *RegistrationService) registerInTra(ctx context.Context, result *CreateFormularioResult) {
	traID, err := s.tra.RegisterFormularioInTra(ctx, result.Formulario.ID)
	if err != nil {
		log.Printf("[registration] formulario %d kept without tra registration: %s\n", result.Formulario.ID, err.Error())
		result.TraStatus = types.TRA_DEGRADED
		result.TraError = err.Error()
		return
	}
	result.Formulario.SubidoTra = true
	result.Formulario.TraID = &traID
	result.TraStatus = types.TRA_REGISTERED
}
