package roblerepos

import (
	"context"
	"encoding/json"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/auth"
	roblesvc "github.com/trezcool/aula/services/roble"
)

type authRepository struct {
	client *roblesvc.AuthClient
	dec    decoder
}

var _ auth.Repository = (*authRepository)(nil)

func NewAuthRepository(client *roblesvc.AuthClient, logger core.Logger) auth.Repository {
	return &authRepository{client: client, dec: decoder{table: "auth", logger: logger}}
}

func (repo *authRepository) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	res, err := repo.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return auth.Session{}, err
	}
	return auth.Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         repo.extractUser(res.Raw, creds.Email),
	}, nil
}

// extractUser reads the `user` object of a login answer, else the top-level
// email/_id/id/userId/name fields. The email falls back to the login email.
func (repo *authRepository) extractUser(body json.RawMessage, loginEmail string) auth.AuthUser {
	fields, ok := repo.dec.row(body)
	if !ok {
		return auth.AuthUser{Email: loginEmail}
	}
	if raw, found := fields["user"]; found && core.DetectShape(raw) == core.ShapeObject {
		if nested, ok := repo.dec.row(raw); ok {
			fields = nested
		}
	}

	usr := auth.AuthUser{
		Email: repo.dec.str("email", fields["email"]),
		Name:  repo.dec.str("name", fields["name"]),
	}
	for _, key := range []string{"id", "_id", "userId"} {
		if id := repo.dec.id(key, fields[key]); id != "" {
			usr.ID = id
			break
		}
	}
	if usr.Email == "" {
		usr.Email = loginEmail
	}
	return usr
}

func (repo *authRepository) Signup(ctx context.Context, acc auth.NewAccount) error {
	return repo.client.Signup(ctx, acc.Email, acc.Password, acc.Name)
}

func (repo *authRepository) Logout(ctx context.Context, accessToken string) error {
	return repo.client.Logout(ctx, accessToken)
}

func (repo *authRepository) VerifyToken(ctx context.Context, accessToken string) error {
	return repo.client.VerifyToken(ctx, accessToken)
}

func (repo *authRepository) VerifyEmail(ctx context.Context, email, code string) error {
	return repo.client.VerifyEmail(ctx, email, code)
}
