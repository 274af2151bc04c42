package auth

import (
	"encoding/json"

	"github.com/trezcool/aula/core"
)

// AuthUser is the signed in account as cached in the session.
type AuthUser struct {
	Email string `json:"email"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UserID is the identifier stored in teacherId/studentIds columns.
// Accounts without a server id fall back to their email.
func (u AuthUser) UserID() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Email
}

// UnmarshalJSON accepts both `id` and `_id`.
func (u *AuthUser) UnmarshalJSON(data []byte) error {
	var raw struct {
		Email  string          `json:"email"`
		ID     json.RawMessage `json:"id"`
		MongID json.RawMessage `json:"_id"`
		Name   string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Email = raw.Email
	u.Name = raw.Name
	u.ID = ""
	if id, _ := core.NormalizeString(raw.ID); id != "" {
		u.ID = core.CleanID(id)
	} else if id, _ := core.NormalizeString(raw.MongID); id != "" {
		u.ID = core.CleanID(id)
	}
	return nil
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type NewAccount struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

// Session is what a successful login hands back.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         AuthUser
}
