// Package config supplies the per-fetch settings snapshot and the process
// configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Setting keys, shared by the settings store, viper and the environment.
const (
	KeyServerURL        = "ServerURL"
	KeyAPISecret        = "APISecret"
	KeyShowValuesInMmol = "ShowValuesInMmol"
	KeyServerInMmol     = "ServerInMmol"
)

// Keys lists every fetch setting key.
var Keys = []string{KeyServerURL, KeyAPISecret, KeyShowValuesInMmol, KeyServerInMmol}

// IsKnownKey reports whether key is a fetch setting.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// IsBoolKey reports whether the setting holds a boolean.
func IsBoolKey(key string) bool {
	return key == KeyShowValuesInMmol || key == KeyServerInMmol
}

// FetchConfig is the read-only snapshot taken at the start of each fetch.
type FetchConfig struct {
	ServerURL     string
	APISecret     string
	DisplayInMmol bool
	ServerInMmol  bool
}

// Validate checks that the server URL is usable.
func (c FetchConfig) Validate() error {
	raw := strings.TrimSpace(c.ServerURL)
	if raw == "" {
		return errors.New("server URL is not configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return nil
}

// Provider supplies a fresh FetchConfig. Implementations must not cache
// across calls so settings changes apply on the next fetch.
type Provider interface {
	Load(ctx context.Context) (FetchConfig, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (FetchConfig, error)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context) (FetchConfig, error) {
	return f(ctx)
}

// Static returns a Provider that always yields cfg.
func Static(cfg FetchConfig) Provider {
	return ProviderFunc(func(context.Context) (FetchConfig, error) {
		return cfg, nil
	})
}

// MaskSecret hides all but the last two characters of a secret.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	r := []rune(secret)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-2) + string(r[len(r)-2:])
}
