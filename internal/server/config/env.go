package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envFileVar names the dotenv file to read. It defaults to ".env".
const envFileVar = "CHATANDPAY_ENV_FILE"

// parseEnv loads the dotenv file, if present, into the process environment
// and then overlays every variable named by a Config env tag. Variables
// that are already set win over the file; unset ones keep the current value.
func parseEnv(cfg *Config) error {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
