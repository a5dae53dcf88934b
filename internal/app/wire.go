package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"kexgram/internal/auth"
	"kexgram/internal/crypto"
	"kexgram/internal/domain"
	"kexgram/internal/store"
	"kexgram/internal/transport"
)

// Wire bundles the stores, transport and services for the CLI.
type Wire struct {
	Config Config
	Log    *logrus.Logger
	Keys   *crypto.Keyring
	Store  domain.KeyStore
	Dialer domain.Dialer
	Auth   *auth.Service
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	log := logrus.New()
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ring, err := loadKeyring(cfg.RSADir)
	if err != nil {
		return nil, err
	}

	// State directory for the encrypted key store
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", cfg.Home, err)
	}
	keyStore := store.NewKeyFileStore(cfg.Home)

	dialer := transport.Dialer{Timeout: cfg.Timeout, Log: log}

	return &Wire{
		Config: cfg,
		Log:    log,
		Keys:   ring,
		Store:  keyStore,
		Dialer: dialer,
		Auth:   auth.New(dialer, ring, keyStore, log),
	}, nil
}

// loadKeyring reads every PEM file under dir into one keyring. An empty dir
// name yields an empty ring; negotiation then fails with a clear error
// until keys are configured.
func loadKeyring(dir string) (*crypto.Keyring, error) {
	ring := crypto.NewKeyring()
	if dir == "" {
		return ring, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rsa key dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pem" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		keys, err := crypto.ParsePublicKeys(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		for _, key := range keys {
			ring.Add(key)
		}
	}
	return ring, nil
}
