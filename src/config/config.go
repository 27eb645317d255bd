package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=hmsdb port=5432 sslmode=disable TimeZone=America/Bogota"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const DATE_PARSE_FORMAT = "2006-01-02"

const (
	DEFAULT_LINK_TTL      = 1 * time.Hour
	DEFAULT_TRA_TIMEOUT   = 10 * time.Second
	DEFAULT_BLACKLIST_TTL = 24 * time.Hour
)

func GetJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GetFormBaseURL is the public page that renders the check-in form; the signed
// token is appended as the last path segment.
func GetFormBaseURL() string {
	base := os.Getenv("FORM_BASE_URL")
	if base == "" {
		base = "http://localhost:3000/registro-formulario"
	}
	return base
}

func GetLinkTTL() time.Duration {
	return durationFromEnv("LINK_TTL", DEFAULT_LINK_TTL)
}

func GetTraTimeout() time.Duration {
	return durationFromEnv("TRA_TIMEOUT", DEFAULT_TRA_TIMEOUT)
}

// GetBlacklistTTL never returns less than the link TTL, so a revoked token
// cannot outlive its revocation entry.
func GetBlacklistTTL() time.Duration {
	ttl := durationFromEnv("BLACKLIST_TTL", DEFAULT_BLACKLIST_TTL)
	if linkTTL := GetLinkTTL(); ttl < linkTTL {
		log.Printf("BLACKLIST_TTL %s is shorter than LINK_TTL %s, using %s\n", ttl, linkTTL, linkTTL)
		return linkTTL
	}
	return ttl
}

func GetTraURL() string {
	return os.Getenv("TRA_URL")
}

func GetTraToken() string {
	return os.Getenv("TRA_TOKEN")
}

func GetNombreEstablecimiento() string {
	return os.Getenv("TRA_NOMBRE_ESTABLECIMIENTO")
}

func GetRntEstablecimiento() string {
	return os.Getenv("TRA_RNT")
}

func TraEnabled() bool {
	enabled, err := strconv.ParseBool(os.Getenv("TRA_ENABLED"))
	return err == nil && enabled && GetTraURL() != ""
}

func GetPublicRateLimit() int {
	n, err := strconv.Atoi(os.Getenv("PUBLIC_RATE_LIMIT"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return port
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
