package auth

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

var (
	// errors
	ErrNoSession = errors.New("no user signed in")
)

type (
	// Repository is the remote auth API.
	Repository interface {
		Login(ctx context.Context, creds Credentials) (Session, error)
		Signup(ctx context.Context, acc NewAccount) error
		Logout(ctx context.Context, accessToken string) error
		VerifyToken(ctx context.Context, accessToken string) error
		VerifyEmail(ctx context.Context, email, code string) error
	}

	Service struct {
		repo   Repository
		prefs  core.Preferences
		logger core.Logger
	}
)

func NewService(repo Repository, prefs core.Preferences, logger core.Logger) *Service {
	return &Service{repo: repo, prefs: prefs, logger: logger}
}

// Login signs in and caches the tokens and the user blob.
func (svc *Service) Login(ctx context.Context, email, password string) (AuthUser, error) {
	creds := Credentials{Email: core.CleanString(email, true /* lower */), Password: password}
	if err := core.ValidateStruct(creds); err != nil {
		return AuthUser{}, err
	}
	sess, err := svc.repo.Login(ctx, creds)
	if err != nil {
		return AuthUser{}, err
	}
	if sess.User.Email == "" {
		sess.User.Email = creds.Email
	}
	blob, err := json.Marshal(sess.User)
	if err != nil {
		return AuthUser{}, errors.Wrap(err, "encoding user")
	}
	for _, kv := range [][2]string{
		{core.PrefToken, sess.AccessToken},
		{core.PrefRefreshToken, sess.RefreshToken},
		{core.PrefUserData, string(blob)},
	} {
		if err := svc.prefs.Store(ctx, kv[0], kv[1]); err != nil {
			svc.dropSession(ctx)
			return AuthUser{}, errors.Wrapf(err, "storing %s", kv[0])
		}
	}
	return sess.User, nil
}

func (svc *Service) Signup(ctx context.Context, email, password, name string) error {
	acc := NewAccount{
		Email:    core.CleanString(email, true /* lower */),
		Password: password,
		Name:     core.CleanString(name),
	}
	if acc.Name == "" {
		acc.Name = core.EmailLocalPart(acc.Email)
	}
	if err := core.ValidateStruct(acc); err != nil {
		return err
	}
	return svc.repo.Signup(ctx, acc)
}

// Logout always ends signed out: the server call is best effort,
// only a failure to clear the local session is returned.
func (svc *Service) Logout(ctx context.Context) error {
	token, err := svc.prefs.Retrieve(ctx, core.PrefToken)
	switch {
	case err == nil && token != "":
		if err := svc.repo.Logout(ctx, token); err != nil {
			svc.logger.Warn("remote logout failed", err)
		}
	case err != nil && !errors.Is(err, core.ErrPrefNotFound):
		svc.logger.Warn("reading token for logout", err)
	}

	for _, key := range core.SessionKeys {
		if err := svc.prefs.Remove(ctx, key); err != nil {
			return errors.Wrapf(err, "removing %s", key)
		}
	}
	return nil
}

// dropSession removes whatever part of a session was stored.
func (svc *Service) dropSession(ctx context.Context) {
	for _, key := range core.SessionKeys {
		if err := svc.prefs.Remove(ctx, key); err != nil {
			svc.logger.Warn("dropping partial session", err, map[string]interface{}{"key": key})
		}
	}
}

// CurrentUser reads the cached user without touching the network.
func (svc *Service) CurrentUser(ctx context.Context) (AuthUser, error) {
	blob, err := svc.prefs.Retrieve(ctx, core.PrefUserData)
	if err != nil {
		if errors.Is(err, core.ErrPrefNotFound) {
			return AuthUser{}, ErrNoSession
		}
		return AuthUser{}, err
	}
	if blob == "" {
		return AuthUser{}, ErrNoSession
	}
	var usr AuthUser
	if err := json.Unmarshal([]byte(blob), &usr); err != nil {
		return AuthUser{}, errors.Wrap(err, "decoding cached user")
	}
	return usr, nil
}

// VerifySession reports whether the stored access token is still accepted.
func (svc *Service) VerifySession(ctx context.Context) bool {
	token, err := svc.prefs.Retrieve(ctx, core.PrefToken)
	if err != nil || token == "" {
		return false
	}
	if err := svc.repo.VerifyToken(ctx, token); err != nil {
		svc.logger.Debug("token verification failed", err)
		return false
	}
	return true
}

func (svc *Service) VerifyEmail(ctx context.Context, email, code string) error {
	email = core.CleanString(email, true /* lower */)
	code = core.CleanString(code)
	if code == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "code", Error: "code is required"})
	}
	return svc.repo.VerifyEmail(ctx, email, code)
}
