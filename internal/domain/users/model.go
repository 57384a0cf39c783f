package users

import (
	"slices"
	"time"

	"pet-admin-api/internal/domain/audit"
)

// User es un operador del panel. PasswordHash nunca sale en una vista.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        *string
	Active       bool
	// Permissions son rutas (sin /api) que el gate autoriza; "/x/*" cubre todo bajo /x.
	Permissions []string

	audit.Envelope
}

type CreateInput struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       *string  `json:"email"`
	Active      bool     `json:"active"`
	Permissions []string `json:"permissions"`
}

// UpdateInput: Password vacío conserva el actual; Active y Permissions nil también.
type UpdateInput struct {
	ID          int64    `json:"user_id"`
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       *string  `json:"email"`
	Active      *bool    `json:"active"`
	Permissions []string `json:"permissions"`
}

type ListView struct {
	ID        int64   `json:"user_id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Active    bool    `json:"active"`
	audit.Envelope
}

type DetailView struct {
	ListView
	Permissions []string `json:"permissions"`
}

func (u *User) apply(in UpdateInput, passwordHash string, actor int64, now time.Time) {
	u.Username = in.Username
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	if in.Active != nil {
		u.Active = *in.Active
	}
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
	if in.Permissions != nil {
		u.Permissions = slices.Clone(in.Permissions)
	}
	u.Touch(actor, now)
}

func (u User) ListView() ListView {
	return ListView{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Active:    u.Active,
		Envelope:  u.Envelope,
	}
}

func (u User) DetailView() DetailView {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return DetailView{ListView: u.ListView(), Permissions: perms}
}
