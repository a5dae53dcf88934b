package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// Home is the state directory holding the encrypted key store,
	// e.g. $HOME/.kexgram.
	Home string `env:"KEXGRAM_HOME"`
	// RSADir holds the trusted server RSA public keys as PEM files.
	RSADir string `env:"KEXGRAM_RSA_DIR"`
	// Passphrase seals the key store on disk.
	Passphrase string `env:"KEXGRAM_PASSPHRASE"`
	// Test selects the test-flavor data centers.
	Test bool `env:"KEXGRAM_TEST" env-default:"false"`
	// Timeout bounds dialing and each round trip.
	Timeout time.Duration `env:"KEXGRAM_TIMEOUT" env-default:"10s"`
	// Verbose enables frame-level debug logging.
	Verbose bool `env:"KEXGRAM_VERBOSE" env-default:"false"`
}

// Load reads Config from the environment, first loading the env file at
// path when one exists. An empty path means ".env"; a missing file is fine.
func Load(path string) (Config, error) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = filepath.Join(home, ".kexgram")
	}
	return cfg, nil
}
