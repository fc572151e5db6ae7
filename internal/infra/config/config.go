package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string

	// OAuth del dashboard
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string

	HTTPAddr       string // opcional, default :8080
	AllowedOrigins []string

	// roles que pueden usar /chaos además de admins (CSV, opcional)
	AdminRoleIDs []string
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}

	cfg := Config{
		DatabaseURL:         get("DATABASE_URL", true),
		DiscordToken:        get("DISCORD_BOT_TOKEN", true),
		DiscordClientID:     get("DISCORD_CLIENT_ID", true),
		DiscordClientSecret: get("DISCORD_CLIENT_SECRET", true),
		DiscordRedirectURI:  get("DISCORD_REDIRECT_URI", true),
		HTTPAddr:            get("HTTP_ADDR", false), // puede quedar vacío
		AllowedOrigins:      splitCSV(get("ALLOWED_ORIGINS", false)),
		AdminRoleIDs:        splitCSV(get("ADMIN_ROLE_IDS", false)),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
	return cfg
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
