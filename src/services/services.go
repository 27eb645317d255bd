package services

import (
	"context"
	"hms/src/lib"
	"hms/src/types"
	"time"

	"gorm.io/gorm"
)

// RevocationStore is an append-only set of revoked invitation tokens.
type RevocationStore interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}

type TokenSigner interface {
	Sign(claims *types.LinkClaims, ttl time.Duration) (string, error)
	Verify(token string) (*types.LinkClaims, error)
}

// TraClient submits a stay to the external registry and returns the code it
// assigned to the principal guest.
type TraClient interface {
	Submit(ctx context.Context, booking *lib.TraBooking) (int64, error)
}

type Mailer interface {
	SendInvitation(ctx context.Context, to string, url string) error
}

type Config struct {
	LinkTTL               time.Duration
	FormBaseURL           string
	TraTimeout            time.Duration
	TraEnabled            bool
	NombreEstablecimiento string
	RntEstablecimiento    string
}

type Services struct {
	Links        *LinkService
	Guests       *GuestService
	Registration *RegistrationService
	Tra          *TraService
	Reversal     *ReversalService
	Trail        *TrailService
}

// New wires every service around one database handle. tra and mailer may be nil.
func New(d *gorm.DB, signer TokenSigner, revocations RevocationStore, tra TraClient, mailer Mailer, cfg Config) *Services {
	links := NewLinkService(d, signer, revocations, mailer, cfg)
	guests := NewGuestService(d)
	traSvc := NewTraService(d, tra, cfg)
	return &Services{
		Links:        links,
		Guests:       guests,
		Registration: NewRegistrationService(d, links, guests, traSvc),
		Tra:          traSvc,
		Reversal:     NewReversalService(d, links),
		Trail:        NewTrailService(d),
	}
}
