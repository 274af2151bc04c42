package echoemu

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/aula/core"
	inmemdb "github.com/trezcool/aula/storage/inmem"
)

const (
	usersTable = "_users"

	kindAccess  = "access"
	kindRefresh = "refresh"

	contextClaimsKey = "claims"
)

var NowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
}

type (
	credentialsRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	refreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	verifyEmailRequest struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}

	userResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
)

func (s *server) registerAuthAPI(g *echo.Group) {
	g.POST("/login", s.login)
	g.POST("/signup", s.signup)
	g.POST("/refresh-token", s.refreshToken)
	g.POST("/verify-email", s.verifyEmail)

	// authed endpoints
	g.POST("/logout", s.logout, s.bearerMiddleware)
	g.GET("/verify-token", s.verifyToken, s.bearerMiddleware)
}

// Handlers

func (s *server) signup(ctx echo.Context) error {
	data := new(credentialsRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	email := core.CleanString(data.Email, true /* lower */)
	if email == "" || data.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	name := core.CleanString(data.Name)
	if name == "" {
		name = core.EmailLocalPart(email)
	}
	code, err := verificationCode()
	if err != nil {
		return err
	}
	row, err := toRow(map[string]interface{}{
		"email":        email,
		"name":         name,
		"passwordHash": string(hash),
		"code":         code,
		"verified":     "false",
	})
	if err != nil {
		return err
	}
	if err := s.insertUser(email, row); err != nil {
		return err
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Info(fmt.Sprintf("verification code for %s: %s", email, code))
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "User created"})
}

// insertUser stores row unless a user already owns email.
func (s *server) insertUser(email string, row inmemdb.Row) error {
	s.signupMu.Lock()
	defer s.signupMu.Unlock()
	if len(s.db.Select(usersTable, map[string]string{"email": email})) > 0 {
		return errEmailExists
	}
	_, err := s.db.Insert(usersTable, []inmemdb.Row{row})
	return err
}

func (s *server) login(ctx echo.Context) error {
	data := new(credentialsRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	usr, hash, ok := s.findUser(core.CleanString(data.Email, true /* lower */))
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(data.Password)) != nil {
		return errAuthenticationFailed
	}

	access, err := s.generateToken(usr, kindAccess)
	if err != nil {
		return err
	}
	refresh, err := s.generateToken(usr, kindRefresh)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         usr,
	})
}

func (s *server) refreshToken(ctx echo.Context) error {
	data := new(refreshRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	claims, err := s.parseToken(data.RefreshToken, kindRefresh)
	if err != nil {
		return errInvalidRefresh
	}
	usr := userResponse{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
	access, err := s.generateToken(usr, kindAccess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"accessToken": access})
}

func (s *server) logout(ctx echo.Context) error {
	claims, err := contextClaims(ctx)
	if err != nil {
		return err
	}
	s.revokedMu.Lock()
	s.revoked[claims.Id] = struct{}{}
	s.revokedMu.Unlock()
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Logged out"})
}

func (s *server) verifyToken(ctx echo.Context) error {
	claims, err := contextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"valid": true, "user": userResponse{ID: claims.Subject, Email: claims.Email, Name: claims.Name}})
}

func (s *server) verifyEmail(ctx echo.Context) error {
	data := new(verifyEmailRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	rows := s.db.Select(usersTable, map[string]string{"email": core.CleanString(data.Email, true /* lower */)})
	if len(rows) == 0 {
		return errInvalidCode
	}
	code, _ := rows[0].Get("code")
	if code == "" || code != core.CleanString(data.Code) {
		return errInvalidCode
	}
	id, _ := rows[0].Get("_id")
	updates, err := toRow(map[string]interface{}{"verified": "true", "code": ""})
	if err != nil {
		return err
	}
	if _, err := s.db.Update(usersTable, "_id", id, updates); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Email verified"})
}

// Helpers

func (s *server) findUser(email string) (userResponse, string, bool) {
	rows := s.db.Select(usersTable, map[string]string{"email": email})
	if len(rows) == 0 {
		return userResponse{}, "", false
	}
	id, _ := rows[0].Get("_id")
	name, _ := rows[0].Get("name")
	hash, _ := rows[0].Get("passwordHash")
	return userResponse{ID: id, Email: email, Name: name}, hash, true
}

func (s *server) generateToken(usr userResponse, kind string) (string, error) {
	ttl := s.opts.AccessTTL
	if kind == kindRefresh {
		ttl = s.opts.RefreshTTL
	}
	now := NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    "roble-emulator",
			Subject:   usr.ID,
			Audience:  s.opts.ProjectID,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Name:  usr.Name,
		Kind:  kind,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(s.opts.SecretKey))
	return ss, errors.Wrap(err, "signing token")
}

// parseToken checks signature, kind, expiry against NowFunc and revocation.
func (s *server) parseToken(raw, kind string) (*Claims, error) {
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	claims := new(Claims)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.opts.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if claims.Kind != kind {
		return nil, errors.New("wrong token kind")
	}
	if NowFunc().Unix() >= claims.ExpiresAt {
		return nil, errors.New("token expired")
	}
	s.revokedMu.RLock()
	_, revoked := s.revoked[claims.Id]
	s.revokedMu.RUnlock()
	if revoked {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

func (s *server) bearerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return errUnauthorized
		}
		claims, err := s.parseToken(strings.TrimPrefix(header, prefix), kindAccess)
		if err != nil {
			return errUnauthorized
		}
		ctx.Set(contextClaimsKey, claims)
		return next(ctx)
	}
}

func contextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return claims, nil
	}
	return nil, errUnauthorized
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "generating verification code")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func toRow(fields map[string]interface{}) (inmemdb.Row, error) {
	row := make(inmemdb.Row, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", k)
		}
		row[k] = raw
	}
	return row, nil
}
