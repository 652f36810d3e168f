package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// Float reads a float from the environment, falling back to def when the
// variable is unset or malformed. Used for the platform rate parameters.
func Float(key string, def float64) float64 {
	raw := Config(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid value for %s (%q), using default %v", key, raw, def)
		return def
	}
	return v
}

// Int64 reads an integer from the environment, falling back to def.
func Int64(key string, def int64) int64 {
	raw := Config(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid value for %s (%q), using default %v", key, raw, def)
		return def
	}
	return v
}

// Bool reads a boolean from the environment, falling back to def.
func Bool(key string, def bool) bool {
	raw := Config(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid value for %s (%q), using default %v", key, raw, def)
		return def
	}
	return v
}
