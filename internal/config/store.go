package config

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jwulff/nightscoutbar-go/internal/storage"
)

// StoreProvider reads fetch settings from the persisted settings store.
// Keys never stored come from the fallback provider, if any.
type StoreProvider struct {
	store    storage.Store
	fallback Provider
}

// NewStoreProvider creates a provider over store. fallback may be nil.
func NewStoreProvider(store storage.Store, fallback Provider) *StoreProvider {
	return &StoreProvider{store: store, fallback: fallback}
}

// Load implements Provider.
func (p *StoreProvider) Load(ctx context.Context) (FetchConfig, error) {
	var cfg FetchConfig
	if p.fallback != nil {
		base, err := p.fallback.Load(ctx)
		if err != nil {
			return FetchConfig{}, err
		}
		cfg = base
	}

	if err := p.overlayString(ctx, KeyServerURL, &cfg.ServerURL); err != nil {
		return FetchConfig{}, err
	}
	if err := p.overlayString(ctx, KeyAPISecret, &cfg.APISecret); err != nil {
		return FetchConfig{}, err
	}
	if err := p.overlayBool(ctx, KeyShowValuesInMmol, &cfg.DisplayInMmol); err != nil {
		return FetchConfig{}, err
	}
	if err := p.overlayBool(ctx, KeyServerInMmol, &cfg.ServerInMmol); err != nil {
		return FetchConfig{}, err
	}
	return cfg, nil
}

func (p *StoreProvider) lookup(ctx context.Context, key string) (string, bool, error) {
	value, err := p.store.GetConfig(ctx, key)
	if storage.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	return value, true, nil
}

func (p *StoreProvider) overlayString(ctx context.Context, key string, dst *string) error {
	value, found, err := p.lookup(ctx, key)
	if err != nil || !found {
		return err
	}
	*dst = value
	return nil
}

func (p *StoreProvider) overlayBool(ctx context.Context, key string, dst *bool) error {
	value, found, err := p.lookup(ctx, key)
	if err != nil || !found {
		return err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("setting %s: %q is not a boolean", key, value)
	}
	*dst = b
	return nil
}

// NormalizeValue validates a value before it is stored under key.
func NormalizeValue(key, value string) (string, error) {
	if !IsKnownKey(key) {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	if IsBoolKey(key) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("setting %s: %q is not a boolean", key, value)
		}
		return strconv.FormatBool(b), nil
	}
	if key == KeyServerURL {
		if err := (FetchConfig{ServerURL: value}).Validate(); err != nil {
			return "", err
		}
	}
	return value, nil
}

var _ Provider = (*StoreProvider)(nil)
