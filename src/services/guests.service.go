package services

import (
	"context"
	"errors"
	"hms/src/db"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"
	"log"
	"strings"

	"gorm.io/gorm"
)

// HuespedInput carries a guest's natural key and personal data.
type HuespedInput struct {
	TipoDocumento   string
	NumeroDocumento string
	models.DatosPersonales
}

func (in HuespedInput) key() documentKey {
	return documentKey{
		tipo:   strings.ToUpper(strings.TrimSpace(in.TipoDocumento)),
		numero: strings.ToUpper(strings.TrimSpace(in.NumeroDocumento)),
	}
}

type documentKey struct {
	tipo   string
	numero string
}

type GuestService struct {
	db *gorm.DB
}

func NewGuestService(d *gorm.DB) *GuestService {
	return &GuestService{db: d}
}

// FindOrCreate returns the live primary guest with the given document, creating
// it when missing. The bool reports whether a row was created.
func (s *GuestService) FindOrCreate(ctx context.Context, in HuespedInput) (*models.Huesped, bool, error) {
	k := in.key()
	if k.tipo == "" || k.numero == "" {
		return nil, false, types.NewValidation("tipoDocumento and numeroDocumento are required")
	}
	huesped, err := s.findByDocumento(ctx, k)
	if err == nil {
		return huesped, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, db.ClassifyError(err, "find huesped")
	}

	huesped = &models.Huesped{
		TipoDocumento:   k.tipo,
		NumeroDocumento: k.numero,
		DatosPersonales: in.DatosPersonales,
	}
	if err := s.db.WithContext(ctx).Create(huesped).Error; err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, false, db.ClassifyError(err, "create huesped")
		}
		// another request created the same guest first
		existing, findErr := s.findByDocumento(ctx, k)
		if findErr != nil {
			return nil, false, db.ClassifyError(findErr, "find huesped")
		}
		return existing, false, nil
	}
	log.Printf("[guests] Created huesped %d (%s %s)\n", huesped.ID, k.tipo, k.numero)
	return huesped, true, nil
}

// LockForBooking re-reads the primary guest inside the booking transaction and
// holds its row so a concurrent reversal cannot remove it. A guest removed
// since it was resolved is registered again under the same document.
func (s *GuestService) LockForBooking(tx *gorm.DB, huesped *models.Huesped, in HuespedInput) (*models.Huesped, error) {
	locked, err := models.LockHuesped(tx, huesped.ID)
	if err == nil {
		return locked, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	k := in.key()
	var current models.Huesped
	err = tx.
		Scopes(scopes.ForUpdate).
		Where("tipo_documento = ? AND numero_documento = ?", k.tipo, k.numero).
		First(&current).
		Error
	if err == nil {
		return &current, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	recreated := models.Huesped{
		TipoDocumento:   k.tipo,
		NumeroDocumento: k.numero,
		DatosPersonales: in.DatosPersonales,
	}
	if err := tx.Create(&recreated).Error; err != nil {
		return nil, err
	}
	log.Printf("[guests] Huesped %d was removed during the booking, registered again as %d\n", huesped.ID, recreated.ID)
	return &recreated, nil
}

func (s *GuestService) findByDocumento(ctx context.Context, k documentKey) (*models.Huesped, error) {
	var huesped models.Huesped
	err := s.db.WithContext(ctx).
		Model(&models.Huesped{}).
		Where("tipo_documento = ? AND numero_documento = ?", k.tipo, k.numero).
		First(&huesped).
		Error
	if err != nil {
		return nil, err
	}
	return &huesped, nil
}

// ResolveSecundarios runs inside the booking transaction. Companions already on
// file are locked and reused, the rest are created in one batch. Every returned
// companion ends up owned by the given primary guest.
func (s *GuestService) ResolveSecundarios(tx *gorm.DB, huesped *models.Huesped, inputs []HuespedInput) ([]*models.HuespedSecundario, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	primary := documentKey{tipo: huesped.TipoDocumento, numero: huesped.NumeroDocumento}
	keys := make([]documentKey, 0, len(inputs))
	byKey := make(map[documentKey]HuespedInput, len(inputs))
	for _, in := range inputs {
		k := in.key()
		if k.tipo == "" || k.numero == "" {
			return nil, types.NewValidation("acompanante is missing tipoDocumento or numeroDocumento")
		}
		if k == primary {
			return nil, types.NewValidation("acompanante %s %s is the primary huesped", k.tipo, k.numero)
		}
		if _, dup := byKey[k]; dup {
			return nil, types.NewValidation("acompanante %s %s is listed twice", k.tipo, k.numero)
		}
		byKey[k] = in
		keys = append(keys, k)
	}

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		conds = append(conds, "(tipo_documento = ? AND numero_documento = ?)")
		args = append(args, k.tipo, k.numero)
	}
	var existing []*models.HuespedSecundario
	err := tx.
		Model(&models.HuespedSecundario{}).
		Scopes(scopes.ForUpdate).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("id").
		Find(&existing).
		Error
	if err != nil {
		return nil, err
	}
	found := make(map[documentKey]*models.HuespedSecundario, len(existing))
	var foreign []uint
	for _, hs := range existing {
		found[documentKey{tipo: hs.TipoDocumento, numero: hs.NumeroDocumento}] = hs
		if hs.HuespedID != huesped.ID {
			foreign = append(foreign, hs.ID)
		}
	}
	if len(foreign) > 0 {
		err := tx.
			Model(&models.HuespedSecundario{}).
			Scopes(scopes.WithIDs(foreign...)).
			Update("huesped_id", huesped.ID).
			Error
		if err != nil {
			return nil, err
		}
		for _, hs := range existing {
			hs.HuespedID = huesped.ID
		}
	}

	var missing []*models.HuespedSecundario
	for _, k := range keys {
		if _, ok := found[k]; ok {
			continue
		}
		missing = append(missing, &models.HuespedSecundario{
			TipoDocumento:   k.tipo,
			NumeroDocumento: k.numero,
			HuespedID:       huesped.ID,
			DatosPersonales: byKey[k].DatosPersonales,
		})
	}
	if len(missing) > 0 {
		if err := tx.Create(&missing).Error; err != nil {
			return nil, err
		}
		for _, hs := range missing {
			found[documentKey{tipo: hs.TipoDocumento, numero: hs.NumeroDocumento}] = hs
		}
	}

	result := make([]*models.HuespedSecundario, 0, len(keys))
	for _, k := range keys {
		result = append(result, found[k])
	}
	return result, nil
}

// ListReservas returns the live reservations of a primary guest, newest first.
func (s *GuestService) ListReservas(ctx context.Context, huespedID uint) ([]models.Reserva, error) {
	var huesped models.Huesped
	if err := s.db.WithContext(ctx).First(&huesped, huespedID).Error; err != nil {
		return nil, db.ClassifyError(err, "find huesped")
	}
	var reservas []models.Reserva
	err := s.db.WithContext(ctx).
		Model(&models.Reserva{}).
		Preload("Habitacion").
		Preload("Factura").
		Preload("HuespedesSecundarios").
		Where("huesped_id = ?", huespedID).
		Order("fecha_inicio DESC").
		Find(&reservas).
		Error
	if err != nil {
		return nil, db.ClassifyError(err, "list reservas")
	}
	return reservas, nil
}
