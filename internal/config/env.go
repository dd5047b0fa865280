// Package config provides environment helpers for guidewalk commands.
package config

import (
	"os"
	"strconv"
)

// Env returns the value of an environment variable, or the fallback
// if it is unset or empty.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvFloat returns a float environment variable, or the fallback if the
// variable is unset or unparseable.
func EnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// EnvInt returns an integer environment variable, or the fallback if the
// variable is unset or unparseable.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// EnvBool returns a boolean environment variable, or the fallback.
// Accepts the forms strconv.ParseBool accepts ("1", "true", "T", ...).
func EnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
