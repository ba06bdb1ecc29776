package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest holds the payload for local account registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a principal.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult bundles the issued token with the authenticated principal.
type AuthResult struct {
	Token     string
	Principal *Principal
}

// TokenClaims is the JWT payload for access tokens. The principal id is
// embedded under the adminId claim for users and admins alike; the key is
// kept for wire compatibility with existing token consumers.
type TokenClaims struct {
	PrincipalID string `json:"adminId"`
	jwt.RegisteredClaims
}

// Profile is a verified identity asserted by an external provider.
type Profile struct {
	Provider    string
	ExternalID  string
	DisplayName string
	Email       string
}
