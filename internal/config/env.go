package config

import "os"

// Environment variables read after .env files are loaded.
const (
	EnvConfig = "ORBFIELD_CONFIG"
	EnvData   = "ORBFIELD_DATA"
)

// EnvOr returns the value of key, or fallback when it is unset or empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
