// Package config loads runtime settings from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN string
	BindAddr    string

	SecretKey string
	TokenTTL  time.Duration

	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	// BagSizes is the allowed retail bag-size set in grams.
	BagSizes []int32
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		BindAddr:               getenv("BIND_ADDR", ":8000"),
		SecretKey:              getenv("SECRET_KEY", "change-me"),
		TokenTTL:               24 * time.Hour,
		FirstSuperuserEmail:    os.Getenv("FIRST_SUPERUSER_EMAIL"),
		FirstSuperuserPassword: os.Getenv("FIRST_SUPERUSER_PASSWORD"),
		BagSizes:               []int32{250, 340, 500, 2500},
	}

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required")
	}

	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL_MINUTES %q", v)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("BAG_SIZES"); v != "" {
		sizes, err := parseBagSizes(v)
		if err != nil {
			return Config{}, err
		}
		cfg.BagSizes = sizes
	}

	return cfg, nil
}

func parseBagSizes(v string) ([]int32, error) {
	var sizes []int32
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		size, err := strconv.ParseInt(part, 10, 32)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid bag size %q in BAG_SIZES", part)
		}
		sizes = append(sizes, int32(size))
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("BAG_SIZES is empty")
	}
	return sizes, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
