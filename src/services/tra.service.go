package services

import (
	"context"
	"errors"
	"fmt"
	"hms/src/config"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"
)

const maxTraAttempts = 5

var ErrTraDisabled = errors.New("tra registration is disabled")

// TraService mirrors completed bookings into the national tourism registry.
// It always runs after the booking commits.
type TraService struct {
	db                    *gorm.DB
	client                TraClient
	timeout               time.Duration
	enabled               bool
	nombreEstablecimiento string
	rntEstablecimiento    string
}

func NewTraService(d *gorm.DB, client TraClient, cfg Config) *TraService {
	return &TraService{
		db:                    d,
		client:                client,
		timeout:               cfg.TraTimeout,
		enabled:               cfg.TraEnabled && client != nil,
		nombreEstablecimiento: cfg.NombreEstablecimiento,
		rntEstablecimiento:    cfg.RntEstablecimiento,
	}
}

func (s *TraService) Enabled() bool {
	return s.enabled
}

// RegisterFormularioInTra is idempotent: a formulario already registered
// returns its stored id without calling the registry.
func (s *TraService) RegisterFormularioInTra(ctx context.Context, formularioID uint) (int64, error) {
	formulario, err := s.loadFormulario(ctx, formularioID)
	if err != nil {
		return 0, db.ClassifyError(err, "find formulario")
	}
	if formulario.SubidoTra && formulario.TraID != nil {
		return *formulario.TraID, nil
	}
	if !s.enabled {
		return 0, types.NewUpstream(ErrTraDisabled, "formulario %d could not be registered in tra", formularioID)
	}
	return s.register(ctx, formulario)
}

// RetryPending re-registers formularios whose earlier attempts failed. It
// returns how many were registered.
func (s *TraService) RetryPending(ctx context.Context, limit int) (int, error) {
	if !s.enabled {
		return 0, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Formulario{}).
		Scopes(scopes.NotUploadedToTra).
		Where("intentos_tra > 0 AND intentos_tra < ?", maxTraAttempts).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).
		Error
	if err != nil {
		return 0, db.ClassifyError(err, "list pending formularios")
	}
	registered := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.RegisterFormularioInTra(ctx, id); err != nil {
			log.Printf("[tra] retry of formulario %d failed: %s\n", id, err.Error())
			continue
		}
		registered++
	}
	return registered, nil
}

func (s *TraService) loadFormulario(ctx context.Context, id uint) (*models.Formulario, error) {
	var formulario models.Formulario
	err := s.db.WithContext(ctx).
		Model(&models.Formulario{}).
		Preload("Huesped").
		Preload("Reserva.Habitacion").
		Preload("Reserva.HuespedesSecundarios").
		First(&formulario, id).
		Error
	if err != nil {
		return nil, err
	}
	if formulario.Huesped == nil || formulario.Reserva == nil {
		return nil, types.NewNotFound("formulario %d has no huesped or reserva", id)
	}
	return &formulario, nil
}

func (s *TraService) register(ctx context.Context, formulario *models.Formulario) (int64, error) {
	booking := s.buildBooking(formulario)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	traID, err := s.client.Submit(callCtx, booking)
	if err != nil {
		s.recordFailure(ctx, formulario.ID, err)
		return 0, types.NewUpstream(err, "formulario %d could not be registered in tra", formulario.ID)
	}

	var stored int64
	err = db.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Formulario{}).
			Scopes(scopes.WithID(formulario.ID), scopes.NotUploadedToTra).
			Updates(map[string]any{
				"subido_tra":       true,
				"tra_id":           traID,
				"ultimo_error_tra": "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// registered concurrently; keep the id already stored
			var current models.Formulario
			if err := tx.Select("tra_id").First(&current, formulario.ID).Error; err != nil {
				return err
			}
			if current.TraID != nil {
				stored = *current.TraID
				return nil
			}
		}
		stored = traID
		return nil
	})
	if err != nil {
		log.Printf("[tra] ERROR formulario %d registered remotely as %d but could not be marked locally: %s\n", formulario.ID, traID, err.Error())
		return 0, types.NewInternal(err, "formulario %d was registered in tra as %d but could not be marked as uploaded", formulario.ID, traID)
	}
	log.Printf("[tra] Registered formulario %d as %d\n", formulario.ID, stored)
	return stored, nil
}

func (s *TraService) recordFailure(ctx context.Context, formularioID uint, cause error) {
	err := s.db.WithContext(ctx).
		Model(&models.Formulario{}).
		Scopes(scopes.WithID(formularioID)).
		Updates(map[string]any{
			"intentos_tra":     gorm.Expr("intentos_tra + 1"),
			"ultimo_error_tra": truncateMessage(cause.Error(), 500),
		}).
		Error
	if err != nil {
		log.Printf("[tra] could not record failure of formulario %d: %s\n", formularioID, err.Error())
	}
}

func (s *TraService) buildBooking(formulario *models.Formulario) *lib.TraBooking {
	reserva := formulario.Reserva
	numero := ""
	tipo := ""
	if reserva.Habitacion != nil {
		numero = strconv.Itoa(reserva.Habitacion.NumeroHabitacion)
		tipo = reserva.Habitacion.Tipo
	}
	stay := func(tipoDocumento, numeroDocumento string, d models.DatosPersonales) lib.TraHuesped {
		procedencia := d.CiudadProcedencia
		if procedencia == "" {
			procedencia = d.CiudadResidencia
		}
		return lib.TraHuesped{
			TipoIdentificacion:   tipoDocumento,
			NumeroIdentificacion: numeroDocumento,
			Nombres:              d.Nombres(),
			Apellidos:            d.Apellidos(),
			CiudadResidencia:     d.CiudadResidencia,
			CiudadProcedencia:    procedencia,
			NumeroHabitacion:     numero,
			CheckIn:              reserva.FechaInicio.Format(config.DATE_PARSE_FORMAT),
			CheckOut:             reserva.FechaFin.Format(config.DATE_PARSE_FORMAT),
		}
	}

	huesped := formulario.Huesped
	booking := &lib.TraBooking{
		IdempotencyKey: fmt.Sprintf("formulario-%d", formulario.ID),
		Principal: lib.TraPrincipal{
			TraHuesped:            stay(huesped.TipoDocumento, huesped.NumeroDocumento, huesped.DatosPersonales),
			Motivo:                reserva.MotivoViaje,
			NumeroAcompanantes:    strconv.Itoa(len(reserva.HuespedesSecundarios)),
			TipoAcomodacion:       tipo,
			Costo:                 strconv.FormatFloat(reserva.Costo, 'f', 2, 64),
			NombreEstablecimiento: s.nombreEstablecimiento,
			RntEstablecimiento:    s.rntEstablecimiento,
		},
	}
	for _, hs := range reserva.HuespedesSecundarios {
		booking.Acompanantes = append(booking.Acompanantes, stay(hs.TipoDocumento, hs.NumeroDocumento, hs.DatosPersonales))
	}
	return booking
}

func truncateMessage(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
