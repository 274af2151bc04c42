package auth

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	inmemprefs "github.com/trezcool/aula/storage/prefs/inmem"
)

type repoMock struct {
	session   Session
	loginErr  error
	logoutErr error
	verifyErr error

	logins    []Credentials
	signups   []NewAccount
	logouts   []string
	verifyHit int
}

func (r *repoMock) Login(_ context.Context, creds Credentials) (Session, error) {
	r.logins = append(r.logins, creds)
	return r.session, r.loginErr
}

func (r *repoMock) Signup(_ context.Context, acc NewAccount) error {
	r.signups = append(r.signups, acc)
	return nil
}

func (r *repoMock) Logout(_ context.Context, token string) error {
	r.logouts = append(r.logouts, token)
	return r.logoutErr
}

func (r *repoMock) VerifyToken(context.Context, string) error {
	r.verifyHit++
	return r.verifyErr
}

func (r *repoMock) VerifyEmail(context.Context, string, string) error { return nil }

// nopLogger keeps this package free of the logger service, which imports it.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// failingPrefs rejects writes of one key.
type failingPrefs struct {
	core.Preferences
	failKey string
}

func (p failingPrefs) Store(ctx context.Context, key, value string) error {
	if key == p.failKey {
		return errors.New("disk full")
	}
	return p.Preferences.Store(ctx, key, value)
}

func setup(repo *repoMock) (*Service, core.Preferences) {
	prefs := inmemprefs.NewPreferences()
	return NewService(repo, prefs, nopLogger{}), prefs
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		session  Session
		loginErr error
		wantUser AuthUser
		wantErr  bool
	}{
		{
			name:     "stores session",
			email:    " Ana@Uni.edu ",
			password: "pwd",
			session:  Session{AccessToken: "a", RefreshToken: "r", User: AuthUser{ID: "u1", Email: "ana@uni.edu", Name: "Ana"}},
			wantUser: AuthUser{ID: "u1", Email: "ana@uni.edu", Name: "Ana"},
		},
		{
			name:     "falls back to login email",
			email:    "bo@uni.edu",
			password: "pwd",
			session:  Session{AccessToken: "a", RefreshToken: "r"},
			wantUser: AuthUser{Email: "bo@uni.edu"},
		},
		{name: "invalid email", email: "nope", password: "pwd", wantErr: true},
		{name: "no password", email: "bo@uni.edu", wantErr: true},
		{name: "rejected", email: "bo@uni.edu", password: "bad", loginErr: core.NewHTTPError("login", 401, nil), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{session: tt.session, loginErr: tt.loginErr}
			svc, prefs := setup(repo)

			usr, err := svc.Login(ctx, tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, err := prefs.Retrieve(ctx, core.PrefToken); !errors.Is(err, core.ErrPrefNotFound) {
					t.Errorf("token stored after failed login")
				}
				return
			}
			if usr != tt.wantUser {
				t.Errorf("Login() = %+v, want %+v", usr, tt.wantUser)
			}
			if tok, _ := prefs.Retrieve(ctx, core.PrefToken); tok != tt.session.AccessToken {
				t.Errorf("stored token = %q, want %q", tok, tt.session.AccessToken)
			}
			if tok, _ := prefs.Retrieve(ctx, core.PrefRefreshToken); tok != tt.session.RefreshToken {
				t.Errorf("stored refresh token = %q, want %q", tok, tt.session.RefreshToken)
			}
			cached, err := svc.CurrentUser(ctx)
			if err != nil || cached != tt.wantUser {
				t.Errorf("CurrentUser() = %+v, %v, want %+v", cached, err, tt.wantUser)
			}
		})
	}
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		signedIn    bool
		logoutErr   error
		wantLogouts int
	}{
		{name: "signed in", signedIn: true, wantLogouts: 1},
		{name: "remote failure still clears", signedIn: true, logoutErr: errors.New("network down"), wantLogouts: 1},
		{name: "signed out", signedIn: false, wantLogouts: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{
				session:   Session{AccessToken: "a", RefreshToken: "r", User: AuthUser{Email: "x@y.z"}},
				logoutErr: tt.logoutErr,
			}
			svc, prefs := setup(repo)
			if tt.signedIn {
				if _, err := svc.Login(ctx, "x@y.z", "pwd"); err != nil {
					t.Fatalf("Login() error = %v", err)
				}
			}

			if err := svc.Logout(ctx); err != nil {
				t.Errorf("Logout() error = %v", err)
			}
			if len(repo.logouts) != tt.wantLogouts {
				t.Errorf("remote logouts = %d, want %d", len(repo.logouts), tt.wantLogouts)
			}
			for _, key := range core.SessionKeys {
				if _, err := prefs.Retrieve(ctx, key); !errors.Is(err, core.ErrPrefNotFound) {
					t.Errorf("%s still stored after Logout()", key)
				}
			}
			if _, err := svc.CurrentUser(ctx); err != ErrNoSession {
				t.Errorf("CurrentUser() error = %v, want %v", err, ErrNoSession)
			}
		})
	}
}

func TestService_Signup(t *testing.T) {
	repo := &repoMock{}
	svc, _ := setup(repo)

	if err := svc.Signup(context.Background(), "Carla.Diaz@Uni.edu", "pwd", "  "); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	want := NewAccount{Email: "carla.diaz@uni.edu", Password: "pwd", Name: "carla.diaz"}
	if len(repo.signups) != 1 || repo.signups[0] != want {
		t.Errorf("Signup() sent %+v, want %+v", repo.signups, want)
	}

	var vErr *core.ValidationError
	if err := svc.Signup(context.Background(), "bad", "pwd", ""); !errors.As(err, &vErr) {
		t.Errorf("Signup() error = %v, want *core.ValidationError", err)
	}
}

func TestService_VerifySession(t *testing.T) {
	ctx := context.Background()

	repo := &repoMock{session: Session{AccessToken: "a"}}
	svc, _ := setup(repo)
	if svc.VerifySession(ctx) {
		t.Errorf("VerifySession() = true without a token")
	}
	if repo.verifyHit != 0 {
		t.Errorf("VerifySession() reached the server without a token")
	}

	if _, err := svc.Login(ctx, "x@y.z", "pwd"); err != nil {
		t.Fatal(err)
	}
	if !svc.VerifySession(ctx) {
		t.Errorf("VerifySession() = false, want true")
	}
	repo.verifyErr = core.NewHTTPError("verify token", 401, nil)
	if svc.VerifySession(ctx) {
		t.Errorf("VerifySession() = true on a rejected token")
	}
}

func TestAuthUser_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want AuthUser
	}{
		{raw: `{"email":"a@b.c","id":"u1","name":"A"}`, want: AuthUser{Email: "a@b.c", ID: "u1", Name: "A"}},
		{raw: `{"email":"a@b.c","_id":"u2\n"}`, want: AuthUser{Email: "a@b.c", ID: "u2"}},
		{raw: `{"email":"a@b.c","id":42}`, want: AuthUser{Email: "a@b.c", ID: "42"}},
		{raw: `{"email":"a@b.c"}`, want: AuthUser{Email: "a@b.c"}},
	}
	for _, tt := range tests {
		var got AuthUser
		if err := got.UnmarshalJSON([]byte(tt.raw)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
	if id := (AuthUser{Email: "a@b.c"}).UserID(); id != "a@b.c" {
		t.Errorf("UserID() = %q, want the email", id)
	}
}

func TestService_LoginStoreFailure(t *testing.T) {
	ctx := context.Background()
	for _, failKey := range []string{core.PrefToken, core.PrefRefreshToken, core.PrefUserData} {
		t.Run(failKey, func(t *testing.T) {
			repo := &repoMock{session: Session{AccessToken: "acc", RefreshToken: "ref", User: AuthUser{ID: "u1", Email: "ana@uni.edu"}}}
			prefs := inmemprefs.NewPreferences()
			svc := NewService(repo, failingPrefs{Preferences: prefs, failKey: failKey}, nopLogger{})

			if _, err := svc.Login(ctx, "ana@uni.edu", "pwd"); err == nil {
				t.Fatal("Login() expected an error")
			}
			for _, key := range core.SessionKeys {
				if _, err := prefs.Retrieve(ctx, key); !errors.Is(err, core.ErrPrefNotFound) {
					t.Errorf("Retrieve(%s) error = %v, want %v", key, err, core.ErrPrefNotFound)
				}
			}
			if _, err := svc.CurrentUser(ctx); err == nil {
				t.Errorf("CurrentUser() error = nil after a failed login")
			}
		})
	}
}
