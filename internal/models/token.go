package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims is the payload of the short-lived edit-mode token issued by the
// passphrase gate.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AdminTokenResponse is returned after a successful passphrase check.
type AdminTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
