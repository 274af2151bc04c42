package roblesvc

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

// Refresher mints a new access token from the stored refresh token.
// It reports false, leaving the store untouched, when that is not possible.
type Refresher interface {
	RefreshToken(ctx context.Context) bool
}

// Executor sends authenticated requests. A 401 on the first attempt triggers one
// refresh and one reissue of the same request; a retry is never retried.
type Executor struct {
	client    *http.Client
	prefs     core.Preferences
	refresher Refresher
	logger    core.Logger
}

func NewExecutor(client *http.Client, prefs core.Preferences, refresher Refresher, logger core.Logger) *Executor {
	return &Executor{client: client, prefs: prefs, refresher: refresher, logger: logger}
}

// Do returns the raw response, whatever its status. When the refresh fails the
// original 401 response is returned.
func (e *Executor) Do(ctx context.Context, req Request) (*Response, error) {
	token, err := e.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := send(ctx, e.client, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if !e.refresher.RefreshToken(ctx) {
		e.logger.Warn("token refresh failed, keeping the 401", map[string]interface{}{"url": req.URL})
		return resp, nil
	}
	newToken, err := e.accessToken(ctx)
	if err != nil {
		e.logger.Warn("access token vanished after refresh", err)
		return resp, nil
	}
	return send(ctx, e.client, req, newToken)
}

func (e *Executor) accessToken(ctx context.Context) (string, error) {
	token, err := e.prefs.Retrieve(ctx, core.PrefToken)
	if err != nil {
		if errors.Is(err, core.ErrPrefNotFound) {
			return "", core.ErrAuthenticationRequired
		}
		return "", errors.Wrap(err, "reading access token")
	}
	if token == "" {
		return "", core.ErrAuthenticationRequired
	}
	return token, nil
}
