package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devSecret = "local_dev_secret"

var defaults = map[string]any{
	"APP_PORT":          "8080",
	"APP_ENV":           "dev",
	"DB_DRIVER":         "postgres",
	"DATABASE_URL":      "",
	"JWT_SECRET":        devSecret,
	"ACCESS_TOKEN_TTL":  "15m",
	"REFRESH_TOKEN_TTL": "168h",
	"QUOTE_DRAFT_TTL":   "720h",
	"CLEANUP_INTERVAL":  "1h",
	"CORS_ORIGINS":      "*",
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file", "err", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (App, error) {
	cfg := App{
		Port:            v.GetString("APP_PORT"),
		Env:             v.GetString("APP_ENV"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTTL:       v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTTL:      v.GetDuration("REFRESH_TOKEN_TTL"),
		QuoteDraftTTL:   v.GetDuration("QUOTE_DRAFT_TTL"),
		CleanupInterval: v.GetDuration("CLEANUP_INTERVAL"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
	}
	return cfg, cfg.validate()
}

func (a App) validate() error {
	var errs []error
	switch a.DBDriver {
	case "postgres":
		if a.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not postgres or sqlite", a.DBDriver))
	}
	if a.Production() && a.JWTSecret == devSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	for k, d := range map[string]int64{
		"ACCESS_TOKEN_TTL":  int64(a.AccessTTL),
		"REFRESH_TOKEN_TTL": int64(a.RefreshTTL),
		"QUOTE_DRAFT_TTL":   int64(a.QuoteDraftTTL),
		"CLEANUP_INTERVAL":  int64(a.CleanupInterval),
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration", k))
		}
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
