package services

import (
	"context"
	"errors"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"log"

	"gorm.io/gorm"
)

type RemoveBookingSummary struct {
	LinkID                         uint   `json:"linkId"`
	FormularioID                   *uint  `json:"formularioId"`
	ReservaID                      *uint  `json:"reservaId"`
	FacturaID                      *uint  `json:"facturaId"`
	HuespedPrincipalEliminado      bool   `json:"huespedPrincipalEliminado"`
	HuespedesSecundariosEliminados []uint `json:"huespedesSecundariosEliminados"`
}

// ReversalService undoes a booking. Guests are only removed when no other
// live reservation still references them.
type ReversalService struct {
	db    *gorm.DB
	links *LinkService
}

func NewReversalService(d *gorm.DB, links *LinkService) *ReversalService {
	return &ReversalService{db: d, links: links}
}

func (s *ReversalService) Remove(ctx context.Context, linkID uint) (*RemoveBookingSummary, error) {
	var link models.LinkFormulario
	if err := s.db.WithContext(ctx).First(&link, linkID).Error; err != nil {
		return nil, db.ClassifyError(err, "find link")
	}

	if !link.Completado || link.FormularioID == nil {
		if err := s.links.Revoke(ctx, linkID); err != nil {
			return nil, err
		}
		return &RemoveBookingSummary{LinkID: linkID, HuespedesSecundariosEliminados: []uint{}}, nil
	}

	var formulario models.Formulario
	if err := s.db.WithContext(ctx).First(&formulario, *link.FormularioID).Error; err != nil {
		return nil, db.ClassifyError(err, "find formulario")
	}

	var summary *RemoveBookingSummary
	err := db.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var reserva models.Reserva
		err := tx.
			Preload("Huesped").
			Preload("HuespedesSecundarios").
			First(&reserva, formulario.ReservaID).
			Error
		if err != nil {
			return err
		}

		out := &RemoveBookingSummary{
			LinkID:                         linkID,
			FormularioID:                   &formulario.ID,
			ReservaID:                      &reserva.ID,
			HuespedesSecundariosEliminados: []uint{},
		}

		if reserva.FacturaID != nil {
			if err := deleteOne(tx, &models.Factura{}, *reserva.FacturaID, "factura"); err != nil {
				return err
			}
			out.FacturaID = reserva.FacturaID
		}
		if err := deleteOne(tx, &models.Formulario{}, formulario.ID, "formulario"); err != nil {
			return err
		}
		if err := deleteOne(tx, &models.Reserva{}, reserva.ID, "reserva"); err != nil {
			return err
		}
		if err := s.links.revokeLink(ctx, tx, &link); err != nil {
			return err
		}

		for _, hs := range reserva.HuespedesSecundarios {
			deleted, err := deleteSecundarioIfOrphan(tx, hs.ID, reserva.ID)
			if err != nil {
				return err
			}
			if deleted {
				out.HuespedesSecundariosEliminados = append(out.HuespedesSecundariosEliminados, hs.ID)
			}
		}
		deleted, err := deleteHuespedIfOrphan(tx, reserva.HuespedID, reserva.ID)
		if err != nil {
			return err
		}
		out.HuespedPrincipalEliminado = deleted

		summary = out
		return nil
	})
	if err != nil {
		return nil, db.ClassifyError(err, "remove booking")
	}
	log.Printf("[reversal] Removed booking of link %d (reserva %d, huesped eliminado=%t, secundarios eliminados=%v)\n",
		linkID, *summary.ReservaID, summary.HuespedPrincipalEliminado, summary.HuespedesSecundariosEliminados)
	return summary, nil
}

func deleteOne(tx *gorm.DB, model any, id uint, name string) error {
	res := tx.Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewConflict("%s %d was removed concurrently", name, id)
	}
	return nil
}

// countOtherActiveReservations counts live reservations of a primary guest
// other than excluding.
func countOtherActiveReservations(tx *gorm.DB, huespedID uint, excluding uint) (int64, error) {
	var n int64
	err := tx.
		Model(&models.Reserva{}).
		Where("huesped_id = ? AND id <> ?", huespedID, excluding).
		Count(&n).
		Error
	return n, err
}

func countOtherActiveReservationsSecundario(tx *gorm.DB, huespedSecundarioID uint, excluding uint) (int64, error) {
	var n int64
	err := tx.
		Table("reserva_huespedes_secundarios AS rhs").
		Joins("JOIN reservas ON reservas.id = rhs.reserva_id").
		Where("rhs.huesped_secundario_id = ?", huespedSecundarioID).
		Where("reservas.deleted_at IS NULL AND reservas.id <> ?", excluding).
		Count(&n).
		Error
	return n, err
}

// deleteHuespedIfOrphan locks the guest before counting so a booking that is
// reusing it either commits first and is counted, or waits and finds it gone.
func deleteHuespedIfOrphan(tx *gorm.DB, huespedID uint, excluding uint) (bool, error) {
	if _, err := models.LockHuesped(tx, huespedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	n, err := countOtherActiveReservations(tx, huespedID, excluding)
	if err != nil || n > 0 {
		return false, err
	}
	res := tx.Delete(&models.Huesped{}, huespedID)
	return res.RowsAffected > 0, res.Error
}

func deleteSecundarioIfOrphan(tx *gorm.DB, huespedSecundarioID uint, excluding uint) (bool, error) {
	if _, err := models.LockHuespedSecundario(tx, huespedSecundarioID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	n, err := countOtherActiveReservationsSecundario(tx, huespedSecundarioID, excluding)
	if err != nil || n > 0 {
		return false, err
	}
	res := tx.Delete(&models.HuespedSecundario{}, huespedSecundarioID)
	return res.RowsAffected > 0, res.Error
}
