package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

var ErrTokenNotFound = fmt.Errorf("cached token not found")

// CLIConfig caches acquired directory tokens between runs so the
// device-code prompt is only shown when no valid token exists.
type CLIConfig struct {
	// Tokens is keyed by "<tenant-id>/<client-id>".
	Tokens map[string]*oauth2.Token
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".reportly", "tokens.json"), nil
}

func Load() (*CLIConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening token cache '%s': %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var cfg CLIConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding token cache '%s': %w", path, err)
	}
	return &cfg, nil
}

func Save(cfg *CLIConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory '%s': %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening token cache '%s' for writing: %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := json.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding token cache to '%s': %w", path, err)
	}
	return nil
}

func CacheKey(tenantID, clientID string) string {
	return tenantID + "/" + clientID
}

func (c *CLIConfig) GetToken(tenantID, clientID string) (*oauth2.Token, error) {
	tok, ok := c.Tokens[CacheKey(tenantID, clientID)]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return tok, nil
}

func (c *CLIConfig) SetToken(tenantID, clientID string, tok *oauth2.Token) {
	if c.Tokens == nil {
		c.Tokens = make(map[string]*oauth2.Token)
	}
	c.Tokens[CacheKey(tenantID, clientID)] = tok
}
