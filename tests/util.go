package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/apps/container"
	echoemu "github.com/trezcool/aula/apps/emulator/echo"
	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/auth"
	logsvc "github.com/trezcool/aula/services/logger"
	inmemdb "github.com/trezcool/aula/storage/inmem"
	inmemprefs "github.com/trezcool/aula/storage/prefs/inmem"
)

const (
	ProjectID = "test-project"
	Password  = "s3cret-pass"
)

// Emulator is a running Roble emulator with direct access to its tables.
type Emulator struct {
	URL string
	DB  *inmemdb.DB
}

// StartEmulator serves a fresh emulator until the test ends.
func StartEmulator(t *testing.T) *Emulator {
	t.Helper()
	db := inmemdb.NewDB(func() string { return uuid.New().String() })
	srv := echoemu.NewServer(&echoemu.Options{
		ProjectID:      ProjectID,
		SecretKey:      "test-secret",
		AccessTTL:      time.Hour,
		RefreshTTL:     24 * time.Hour,
		Debug:          true,
		DisableReqLogs: true,
		Logger:         logsvc.NewDiscardLogger(),
		DB:             db,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &Emulator{URL: ts.URL, DB: db}
}

// NewConfig points a config at the emulator.
func NewConfig(emu *Emulator) *core.Config {
	conf := &core.Config{Env: "TEST", Debug: true, TestMode: true}
	conf.Roble.ProjectID = ProjectID
	conf.Roble.AuthURL = emu.URL + "/auth"
	conf.Roble.DatabaseURL = emu.URL + "/database"
	conf.Roble.Timeout = 5 * time.Second
	conf.Prefs.Backend = "memory"
	conf.Grouping.Seed = 42
	return conf
}

// NewApp builds a container on the emulator with its own in-memory session.
func NewApp(t *testing.T, emu *Emulator) *container.Container {
	t.Helper()
	return container.New(container.Deps{
		Conf:   NewConfig(emu),
		Logger: logsvc.NewDiscardLogger(),
		Prefs:  inmemprefs.NewPreferences(),
	})
}

// SignIn signs email up (ignoring an existing account) and logs app in as that user.
func SignIn(t *testing.T, app *container.Container, email string) auth.AuthUser {
	t.Helper()
	ctx := context.Background()
	if err := app.Auth().Signup(ctx, email, Password, ""); err != nil && core.StatusCode(err) != 409 {
		t.Fatalf("Signup() failed: %v", err)
	}
	usr, err := app.Auth().Login(ctx, email, Password)
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	return usr
}

// CheckPreferences runs the session store contract against an empty store.
func CheckPreferences(t *testing.T, prefs core.Preferences) {
	t.Helper()
	ctx := context.Background()

	if _, err := prefs.Retrieve(ctx, core.PrefToken); !errors.Is(err, core.ErrPrefNotFound) {
		t.Fatalf("Retrieve() on an empty store error = %v, want %v", err, core.ErrPrefNotFound)
	}
	for key, val := range map[string]string{
		core.PrefToken:        "access",
		core.PrefRefreshToken: "refresh",
		core.PrefUserData:     `{"email":"ana@uni.edu"}`,
	} {
		if err := prefs.Store(ctx, key, val); err != nil {
			t.Fatalf("Store(%s) error = %v", key, err)
		}
		if got, err := prefs.Retrieve(ctx, key); err != nil || got != val {
			t.Errorf("Retrieve(%s) = %q, %v, want %q", key, got, err, val)
		}
	}

	if err := prefs.Store(ctx, core.PrefToken, "rotated"); err != nil {
		t.Fatalf("Store() overwrite error = %v", err)
	}
	if got, _ := prefs.Retrieve(ctx, core.PrefToken); got != "rotated" {
		t.Errorf("Retrieve() after overwrite = %q, want %q", got, "rotated")
	}

	if err := prefs.Remove(ctx, core.PrefToken); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := prefs.Remove(ctx, core.PrefToken); err != nil {
		t.Errorf("Remove() of a missing key error = %v", err)
	}
	if _, err := prefs.Retrieve(ctx, core.PrefToken); !errors.Is(err, core.ErrPrefNotFound) {
		t.Errorf("Retrieve() after Remove() error = %v", err)
	}
	if got, _ := prefs.Retrieve(ctx, core.PrefRefreshToken); got != "refresh" {
		t.Errorf("Remove() touched another key")
	}

	if err := prefs.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range core.SessionKeys {
		if _, err := prefs.Retrieve(ctx, key); !errors.Is(err, core.ErrPrefNotFound) {
			t.Errorf("Retrieve(%s) after Clear() error = %v", key, err)
		}
	}
}
