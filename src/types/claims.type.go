package types

import "github.com/golang-jwt/jwt/v5"

const (
	RoleFormulario    = "registroFormulario"
	RoleAdministrador = "ADMINISTRADOR"
	RoleCajero        = "CAJERO"
)

// Claims is carried by staff session tokens.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LinkClaims is carried by invitation tokens. ID is the LinkFormulario row id.
type LinkClaims struct {
	ID   uint   `json:"id"`
	Role string `json:"rol"`
	jwt.RegisteredClaims
}
