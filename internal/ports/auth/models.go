package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID      int64
	Username    string
	Permissions []string
	TokenID     string
	ExpiresAt   time.Time
}

// Actor es quien ejecuta una mutación; se estampa en los campos de auditoría.
type Actor struct {
	UserID   int64
	Username string
}
