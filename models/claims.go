package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role values form the closed set the gates authorize against.
const (
	RoleTrader   = "trader"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// Claims is the verified bearer-token payload. Subject and expiry come from
// the registered claims; ImpersonatedBy is set on admin-issued tokens acting
// on behalf of the subject and bypasses the subject's own block check.
type Claims struct {
	jwt.RegisteredClaims
	Role           string `json:"role"`
	ImpersonatedBy string `json:"impersonated_by,omitempty"`
}

// Impersonated reports whether an admin is acting on behalf of this principal
func (c *Claims) Impersonated() bool {
	return c.ImpersonatedBy != ""
}
