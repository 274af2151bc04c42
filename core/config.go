package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string
	Build        string
	Debug        bool
	TestMode     bool
	LogLevel     string
	RollbarToken string

	Roble struct {
		ProjectID   string `validate:"notblank"`
		AuthURL     string `validate:"required,url"`
		DatabaseURL string `validate:"required,url"`
		Timeout     time.Duration
	}

	Prefs struct {
		Backend     string `validate:"oneof=memory file redis postgres"`
		Path        string
		RedisAddr   string
		RedisPrefix string
		DatabaseURL string
	}

	Grouping struct {
		Seed int64
	}

	Emulator struct {
		Addr       string
		SecretKey  string
		AccessTTL  time.Duration
		RefreshTTL time.Duration
	}
}

// AuthBaseURL is the auth endpoint root of the configured project.
func (c *Config) AuthBaseURL() string {
	return strings.TrimRight(c.Roble.AuthURL, "/") + "/" + c.Roble.ProjectID
}

// DatabaseBaseURL is the database endpoint root of the configured project.
func (c *Config) DatabaseBaseURL() string {
	return strings.TrimRight(c.Roble.DatabaseURL, "/") + "/" + c.Roble.ProjectID
}

// Validate reports a missing project id or a malformed endpoint before anything is dialed.
func (c *Config) Validate() error {
	return ValidateStruct(c)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("testMode", false)
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("roble.projectId", "")
	v.SetDefault("roble.authURL", "https://roble-api.openlab.uninorte.edu.co/auth")
	v.SetDefault("roble.databaseURL", "https://roble-api.openlab.uninorte.edu.co/database")
	v.SetDefault("roble.timeout", 10*time.Second)
	v.SetDefault("prefs.backend", "file")
	v.SetDefault("prefs.path", defaultPrefsPath())
	v.SetDefault("prefs.redisAddr", "localhost:6379")
	v.SetDefault("prefs.redisPrefix", "aula:session")
	v.SetDefault("prefs.databaseURL", "")
	v.SetDefault("grouping.seed", int64(0))
	v.SetDefault("emulator.addr", ":8787")
	v.SetDefault("emulator.secretKey", "k2#9vq!ro8le-emu)x4t$w1n&zh7@m0c")
	v.SetDefault("emulator.accessTTL", 15*time.Minute)
	v.SetDefault("emulator.refreshTTL", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		LogLevel:     v.GetString("logLevel"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Roble.ProjectID = v.GetString("roble.projectId")
	conf.Roble.AuthURL = v.GetString("roble.authURL")
	conf.Roble.DatabaseURL = v.GetString("roble.databaseURL")
	conf.Roble.Timeout = v.GetDuration("roble.timeout")
	conf.Prefs.Backend = strings.ToLower(v.GetString("prefs.backend"))
	conf.Prefs.Path = v.GetString("prefs.path")
	conf.Prefs.RedisAddr = v.GetString("prefs.redisAddr")
	conf.Prefs.RedisPrefix = v.GetString("prefs.redisPrefix")
	conf.Prefs.DatabaseURL = v.GetString("prefs.databaseURL")
	conf.Grouping.Seed = v.GetInt64("grouping.seed")
	conf.Emulator.Addr = v.GetString("emulator.addr")
	conf.Emulator.SecretKey = v.GetString("emulator.secretKey")
	conf.Emulator.AccessTTL = v.GetDuration("emulator.accessTTL")
	conf.Emulator.RefreshTTL = v.GetDuration("emulator.refreshTTL")
	return conf
}

// configDir is $AULA_CONFIG_DIR, else ./config.
func configDir() string {
	if dir := os.Getenv("AULA_CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(wd, "config")
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "aula", "session.json")
}
