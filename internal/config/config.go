// Package config loads connection settings from the environment, with .env
// support matching the companion tooling.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MissingVarError reports a required environment variable that is not set.
// It maps to a distinct exit status at the top level.
type MissingVarError struct {
	Key string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("missing required environment variable: %s", e.Key)
}

type Config struct {
	BaseURL     string
	TokenID     string
	TokenSecret string
	BookName    string

	// ContentDir is the push source and pull target; empty means a
	// directory named after the book under the working directory.
	ContentDir string
	Insecure   bool
	CACertPath string
	DryRun     bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over .env entries.
func Load() (*Config, error) {
	cfg, err := LoadConnection()
	if err != nil {
		return nil, err
	}
	if cfg.BookName, err = required("BOOKSTACK_BOOK_NAME"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConnection reads only the connection settings. Commands that operate
// on the whole instance rather than one book (the users report) use this so
// BOOKSTACK_BOOK_NAME stays optional for them.
func LoadConnection() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BookName:   strings.TrimSpace(os.Getenv("BOOKSTACK_BOOK_NAME")),
		ContentDir: strings.TrimSpace(os.Getenv("CONTENT_DIR")),
		Insecure:   boolEnv("BOOKSTACK_INSECURE"),
		CACertPath: strings.TrimSpace(os.Getenv("BOOKSTACK_CA_CERT")),
		DryRun:     boolEnv("BOOKSTACK_DRY_RUN"),
	}
	var err error
	if cfg.BaseURL, err = required("BOOKSTACK_BASE_URL"); err != nil {
		return nil, err
	}
	if cfg.TokenID, err = required("BOOKSTACK_TOKEN_ID"); err != nil {
		return nil, err
	}
	if cfg.TokenSecret, err = required("BOOKSTACK_TOKEN_SECRET"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveContentDir returns the effective content directory: the configured
// override, or a directory named after the book under the working directory.
func (c *Config) ResolveContentDir() string {
	if c.ContentDir != "" {
		return c.ContentDir
	}
	return filepath.Join(".", c.BookName)
}

// HTTPClient builds the single HTTP session used for the whole run,
// applying the TLS policy. Insecure mode disables certificate verification;
// a CA path installs a custom root pool instead.
func (c *Config) HTTPClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	switch {
	case c.CACertPath != "":
		pem, err := os.ReadFile(c.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.CACertPath)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	case c.Insecure:
		fmt.Fprintln(os.Stderr, "[!] TLS verification DISABLED (BOOKSTACK_INSECURE=1). Use only for testing.")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}, nil
}

func required(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", &MissingVarError{Key: key}
	}
	return value, nil
}

func boolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
