package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParse is returned when environment variables cannot be parsed
	// into the config struct.
	ErrParse = errors.New("failed to parse environment into config")

	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("nil pointer passed to config loader")
)

var loadDotEnv sync.Once

// Load populates cfg from environment variables using its env tags.
// On first use it also loads a .env file from the working directory if
// one exists, so local development needs no exported environment.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}
	loadDotEnv.Do(func() {
		// Missing .env is fine outside development.
		_ = godotenv.Load()
	})
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParse, err)
	}
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// LoadEnv loads additional env files, later files overriding earlier
// ones. Used by tests and tooling that need a non-default environment.
func LoadEnv(paths ...string) error {
	return godotenv.Overload(paths...)
}
