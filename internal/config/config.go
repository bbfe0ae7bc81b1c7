package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Three separate JWT secrets
// are used so that activation, access and refresh tokens can never be
// replayed in each other's place.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	ActivationSecret string        // signs activation tokens
	AccessSecret     string        // signs access tokens
	RefreshSecret    string        // signs refresh tokens
	ActivationTTL    time.Duration // activation token lifetime (default 5m)
	AccessTTL        time.Duration // access token lifetime
	RefreshTTL       time.Duration // refresh token lifetime

	BcryptCost int

	Origin string // allowed CORS origin ("" allows any)

	ResendAPIKey string // Resend API key; empty falls back to log-only mail
	MailFrom     string // sender address for outgoing mail
	AdminEmail   string // inbox notified about new reviews ("" disables)

	CloudName      string // Cloudinary cloud name; empty disables media uploads
	CloudAPIKey    string
	CloudAPISecret string
}

// Load reads configuration from environment variables. Required
// variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		ActivationSecret: must("ACTIVATION_SECRET"),
		AccessSecret:     must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:    must("REFRESH_TOKEN_SECRET"),
		ActivationTTL:    time.Duration(envInt("ACTIVATION_TOKEN_TTL_MIN", 5)) * time.Minute,
		AccessTTL:        time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTL:       time.Duration(mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,

		BcryptCost: mustInt("BCRYPT_COST"),

		Origin: os.Getenv("ORIGIN"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),
		AdminEmail:   os.Getenv("ADMIN_NOTIFY_EMAIL"),

		CloudName:      os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
