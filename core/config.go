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

type (
	// Config holds all runtime settings for the dashboard gateway.
	Config struct {
		Debug     bool
		TestMode  bool
		Env       string
		Build     string
		AppName   string
		SecretKey []byte // HS256 key shared with the platform API

		Server   ServerConfig
		Upstream UpstreamConfig
		Session  SessionConfig

		RollbarToken string
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	// UpstreamConfig points at the remote platform API that owns all
	// business logic (users, organizations, reports, payments).
	UpstreamConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		// Storage selects the Keeper backend: "bolt", "postgres" or "inmem".
		Storage     string
		BoltPath    string
		DatabaseURL string
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("serverHost", "0.0.0.0:8008")
	conf.SetDefault("serverDebugHost", "0.0.0.0:6060")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("upstreamBaseURL", "http://localhost:8000/v1")
	conf.SetDefault("upstreamTimeout", 10*time.Second)
	conf.SetDefault("sessionStorage", "bolt")
	conf.SetDefault("sessionBoltPath", "darasa-sessions.db")
	conf.SetDefault("databaseURL", "")
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:     conf.GetBool("debug"),
		TestMode:  testMode,
		Env:       env,
		Build:     conf.GetString("build"),
		AppName:   conf.GetString("appName"),
		SecretKey: []byte(conf.GetString("secretKey")),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Upstream: UpstreamConfig{
			BaseURL: conf.GetString("upstreamBaseURL"),
			Timeout: conf.GetDuration("upstreamTimeout"),
		},
		Session: SessionConfig{
			Storage:     conf.GetString("sessionStorage"),
			BoltPath:    conf.GetString("sessionBoltPath"),
			DatabaseURL: conf.GetString("databaseURL"),
		},
		RollbarToken: conf.GetString("rollbarToken"),
	}
}
