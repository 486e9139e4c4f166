package auth

import "time"

// Role distinguishes storefront customers from back-office operators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims is the identity carried by an auth token.
type Claims struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the claims grant back-office access.
func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
