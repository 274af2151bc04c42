package roblesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/aula/core"
)

// LoginResult is a decoded login answer. Raw keeps the whole body for user extraction.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Raw          json.RawMessage
}

// AuthClient talks to <authURL>/<projectId>. It never goes through the Executor.
type AuthClient struct {
	baseURL string
	client  *http.Client
	prefs   core.Preferences
	logger  core.Logger

	refreshGroup singleflight.Group
}

var _ Refresher = (*AuthClient)(nil)

func NewAuthClient(baseURL string, client *http.Client, prefs core.Preferences, logger core.Logger) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		prefs:   prefs,
		logger:  logger,
	}
}

func (c *AuthClient) call(ctx context.Context, method, path string, payload interface{}, token string) (*Response, error) {
	req, err := jsonRequest(method, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	return send(ctx, c.client, req, token)
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	resp, err := c.call(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, "")
	if err != nil {
		return LoginResult{}, err
	}
	if resp.StatusCode != http.StatusCreated {
		return LoginResult{}, core.NewHTTPError("login", resp.StatusCode, resp.Body)
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return LoginResult{}, errors.Wrap(core.ErrContractViolation, "login: undecodable body")
	}
	if tokens.AccessToken == "" {
		return LoginResult{}, errors.Wrap(core.ErrContractViolation, "login: no access token")
	}
	return LoginResult{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, Raw: resp.Body}, nil
}

func (c *AuthClient) Signup(ctx context.Context, email, password, name string) error {
	payload := map[string]string{"email": email, "password": password, "name": name}
	resp, err := c.call(ctx, http.MethodPost, "/signup", payload, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return core.NewHTTPError("signup", resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.call(ctx, http.MethodPost, "/logout", nil, accessToken)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return core.NewHTTPError("logout", resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *AuthClient) VerifyToken(ctx context.Context, accessToken string) error {
	resp, err := c.call(ctx, http.MethodGet, "/verify-token", nil, accessToken)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return core.NewHTTPError("verify token", resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *AuthClient) VerifyEmail(ctx context.Context, email, code string) error {
	resp, err := c.call(ctx, http.MethodPost, "/verify-email", map[string]string{"email": email, "code": code}, "")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return core.NewHTTPError("verify email", resp.StatusCode, resp.Body)
	}
	return nil
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Concurrent callers share a single refresh call.
func (c *AuthClient) RefreshToken(ctx context.Context) bool {
	ok, _, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	return ok.(bool)
}

func (c *AuthClient) refresh(ctx context.Context) bool {
	refreshToken, err := c.prefs.Retrieve(ctx, core.PrefRefreshToken)
	if err != nil || refreshToken == "" {
		return false
	}

	resp, err := c.call(ctx, http.MethodPost, "/refresh-token", map[string]string{"refreshToken": refreshToken}, "")
	if err != nil {
		c.logger.Warn("refresh-token call failed", err)
		return false
	}
	if resp.StatusCode != http.StatusCreated {
		c.logger.Warn("refresh-token rejected", core.NewHTTPError("refresh token", resp.StatusCode, resp.Body))
		return false
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.AccessToken == "" {
		c.logger.Warn("refresh-token answered without an access token")
		return false
	}
	if err := c.prefs.Store(ctx, core.PrefToken, payload.AccessToken); err != nil {
		c.logger.Error("storing refreshed token", err)
		return false
	}
	return true
}
