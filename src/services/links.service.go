package services

import (
	"context"
	"errors"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

type IssueLinkInput struct {
	NumeroHabitacion int
	FechaInicio      time.Time
	FechaFin         time.Time
	Costo            float64
	Email            string
}

type LinkFilters struct {
	Completado *bool
	Expirado   *bool
}

// LinkService owns the invitation tokens that gate the public check-in form.
type LinkService struct {
	db          *gorm.DB
	signer      TokenSigner
	revocations RevocationStore
	mailer      Mailer
	ttl         time.Duration
	baseURL     string
	now         func() time.Time
}

func NewLinkService(d *gorm.DB, signer TokenSigner, revocations RevocationStore, mailer Mailer, cfg Config) *LinkService {
	return &LinkService{
		db:          d,
		signer:      signer,
		revocations: revocations,
		mailer:      mailer,
		ttl:         cfg.LinkTTL,
		baseURL:     strings.TrimRight(cfg.FormBaseURL, "/"),
		now:         time.Now,
	}
}

// Issue creates an invitation for a stay in an existing room and returns it
// with its final URL.
func (s *LinkService) Issue(ctx context.Context, in IssueLinkInput) (*models.LinkFormulario, error) {
	if !in.FechaFin.After(in.FechaInicio) {
		return nil, types.NewValidation("fechaFin must be after fechaInicio")
	}
	if in.Costo <= 0 {
		return nil, types.NewValidation("costo must be greater than zero")
	}
	var link *models.LinkFormulario
	err := db.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := models.FindHabitacionByNumero(tx, in.NumeroHabitacion); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("habitacion %d not found", in.NumeroHabitacion)
			}
			return err
		}
		slot, err := s.reserveSlot(tx, in)
		if err != nil {
			return err
		}
		token, err := s.mint(slot.ID)
		if err != nil {
			return types.NewInternal(err, "could not sign token for link %d", slot.ID)
		}
		if err := s.finalize(tx, slot, s.urlFor(token)); err != nil {
			return err
		}
		link = slot
		return nil
	})
	if err != nil {
		return nil, db.ClassifyError(err, "issue link")
	}
	log.Printf("[links] Issued link %d for habitacion %d\n", link.ID, link.NumeroHabitacion)

	if in.Email != "" && s.mailer != nil {
		if err := s.mailer.SendInvitation(ctx, in.Email, link.URL); err != nil {
			log.Printf("[links] Could not mail link %d to %s: %s\n", link.ID, in.Email, err.Error())
		}
	}
	return link, nil
}

// reserveSlot inserts the row with an empty URL so the store assigns its ID.
func (s *LinkService) reserveSlot(tx *gorm.DB, in IssueLinkInput) (*models.LinkFormulario, error) {
	link := models.LinkFormulario{
		Vencimiento:      s.now().Add(s.ttl),
		NumeroHabitacion: in.NumeroHabitacion,
		FechaInicio:      in.FechaInicio,
		FechaFin:         in.FechaFin,
		Costo:            in.Costo,
	}
	if err := tx.Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// finalize stores the URL carrying the token signed over the reserved ID.
func (s *LinkService) finalize(tx *gorm.DB, link *models.LinkFormulario, url string) error {
	res := tx.
		Model(&models.LinkFormulario{}).
		Scopes(scopes.WithID(link.ID)).
		Update("url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewNotFound("link %d not found", link.ID)
	}
	link.URL = url
	link.Estado = link.EstadoEn(s.now())
	return nil
}

// Regenerate replaces the token of a link that has not been used yet. The
// update is conditional so a completion racing with it wins; the old token is
// revoked only once the new one is stored.
func (s *LinkService) Regenerate(ctx context.Context, id uint) (*models.LinkFormulario, error) {
	var link models.LinkFormulario
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&link).Error; err != nil {
		return nil, db.ClassifyError(err, "find link")
	}
	if link.Completado {
		return nil, types.NewConflict("link %d already has a formulario and cannot be regenerated", id)
	}
	token, err := s.mint(id)
	if err != nil {
		return nil, types.NewInternal(err, "could not sign token for link %d", id)
	}
	old := link.Token()
	url := s.urlFor(token)
	vencimiento := s.now().Add(s.ttl)
	err = db.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		res := tx.
			Model(&models.LinkFormulario{}).
			Scopes(scopes.WithID(id), scopes.Unconsumed).
			Updates(map[string]any{
				"url":         url,
				"vencimiento": vencimiento,
				"expirado":    false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflict("link %d was completed while regenerating", id)
		}
		if old == "" {
			return nil
		}
		if err := s.revocations.Add(ctx, old); err != nil {
			return types.NewInternal(err, "could not revoke token of link %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, db.ClassifyError(err, "regenerate link")
	}
	link.URL = url
	link.Vencimiento = vencimiento
	link.Expirado = false
	link.Estado = link.EstadoEn(s.now())
	log.Printf("[links] Regenerated link %d\n", id)
	return &link, nil
}

// Validate checks signature, expiry and revocation of an invitation token.
func (s *LinkService) Validate(ctx context.Context, token string) (*types.LinkClaims, error) {
	if token == "" {
		return nil, types.NewUnauthorized("missing token")
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		log.Printf("[links] token error: %s\n", err.Error())
		return nil, types.NewUnauthorized("invalid or expired token")
	}
	if claims.Role != types.RoleFormulario || claims.ID == 0 {
		return nil, types.NewUnauthorized("token is not a formulario invitation")
	}
	revoked, err := s.revocations.Contains(ctx, token)
	if err != nil {
		return nil, types.NewInternal(err, "could not check token revocation")
	}
	if revoked {
		return nil, types.NewUnauthorized("token has been revoked")
	}
	return claims, nil
}

// Revoke abandons an invitation: the row is soft-deleted and its token revoked.
func (s *LinkService) Revoke(ctx context.Context, id uint) error {
	var link models.LinkFormulario
	if err := s.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&link).Error; err != nil {
		return db.ClassifyError(err, "find link")
	}
	if err := s.revokeLink(ctx, s.db.WithContext(ctx), &link); err != nil {
		return db.ClassifyError(err, "revoke link")
	}
	log.Printf("[links] Revoked link %d\n", id)
	return nil
}

// revokeLink runs on tx so the reversal can include it in its transaction.
func (s *LinkService) revokeLink(ctx context.Context, tx *gorm.DB, link *models.LinkFormulario) error {
	res := tx.Delete(&models.LinkFormulario{}, link.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewConflict("link %d was already removed", link.ID)
	}
	if token := link.Token(); token != "" {
		if err := s.revocations.Add(ctx, token); err != nil {
			return types.NewInternal(err, "could not revoke token of link %d", link.ID)
		}
	}
	return nil
}

func (s *LinkService) FindByID(ctx context.Context, id uint) (*models.LinkFormulario, error) {
	var link models.LinkFormulario
	err := s.db.WithContext(ctx).
		Model(&models.LinkFormulario{}).
		Preload("Formulario").
		Scopes(scopes.WithID(id)).
		First(&link).
		Error
	if err != nil {
		return nil, db.ClassifyError(err, "find link")
	}
	link.Estado = link.EstadoEn(s.now())
	return &link, nil
}

func (s *LinkService) List(ctx context.Context, filters LinkFilters) ([]models.LinkFormulario, error) {
	var links []models.LinkFormulario
	q := s.db.WithContext(ctx).Model(&models.LinkFormulario{})
	if filters.Completado != nil {
		q = q.Where("completado = ?", *filters.Completado)
	}
	if filters.Expirado != nil {
		q = q.Where("expirado = ?", *filters.Expirado)
	}
	if err := q.Order("created_at DESC").Limit(100).Find(&links).Error; err != nil {
		return nil, db.ClassifyError(err, "list links")
	}
	now := s.now()
	for i := range links {
		links[i].Estado = links[i].EstadoEn(now)
	}
	return links, nil
}

// QRCode renders the link URL for printing at the front desk.
func (s *LinkService) QRCode(ctx context.Context, id uint) ([]byte, error) {
	link, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.Completado {
		return nil, types.NewConflict("link %d already has a formulario", id)
	}
	img, err := lib.QRCodeJPEG(link.URL)
	if err != nil {
		return nil, types.NewInternal(err, "could not render qr code for link %d", id)
	}
	return img, nil
}

// ExpireStale flags unused links whose expiry has passed.
func (s *LinkService) ExpireStale(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.LinkFormulario{}).
		Scopes(scopes.Unconsumed, scopes.ExpiredBefore(s.now())).
		Update("expirado", true)
	if res.Error != nil {
		return 0, db.ClassifyError(res.Error, "expire links")
	}
	return res.RowsAffected, nil
}

func (s *LinkService) mint(id uint) (string, error) {
	return s.signer.Sign(&types.LinkClaims{ID: id, Role: types.RoleFormulario}, s.ttl)
}

func (s *LinkService) urlFor(token string) string {
	return s.baseURL + "/" + token
}
