package config

import "time"

type App struct {
	Port            string
	Env             string
	DBDriver        string
	DatabaseURL     string
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	QuoteDraftTTL   time.Duration
	CleanupInterval time.Duration
	CORSOrigins     []string
}

func (a App) Production() bool { return a.Env == "prod" || a.Env == "production" }
