package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwulff/nightscoutbar-go/internal/storage"
	"github.com/jwulff/nightscoutbar-go/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://ns.example.com", false},
		{"http with port", "http://192.168.1.10:1337", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"no scheme", "ns.example.com", true},
		{"bad scheme", "ws://ns.example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FetchConfig{ServerURL: tt.url}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "**", MaskSecret("ab"))
	assert.Equal(t, "****ef", MaskSecret("abcdef"))
}

func TestNewViperDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	proc := ProcessFrom(v)
	assert.Equal(t, "info", proc.LogLevel)
	assert.Equal(t, "127.0.0.1:8787", proc.HTTPAddr)
	assert.Equal(t, "nightscoutbar.db", proc.SettingsDB)
	assert.Equal(t, 30*time.Second, proc.PollInterval)
	assert.Equal(t, 20*time.Second, proc.PollTimeout)
}

func TestNewViperFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nightscoutbar.yaml")
	content := []byte(`
log_level: debug
http:
  addr: ""
poll:
  interval: 45s
ServerURL: https://ns.example.com
APISecret: s3cret
ShowValuesInMmol: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)

	proc := ProcessFrom(v)
	assert.Equal(t, "debug", proc.LogLevel)
	assert.Equal(t, "", proc.HTTPAddr)
	assert.Equal(t, 45*time.Second, proc.PollInterval)

	cfg, err := NewViperProvider(v).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FetchConfig{
		ServerURL:     "https://ns.example.com",
		APISecret:     "s3cret",
		DisplayInMmol: true,
		ServerInMmol:  false,
	}, cfg)
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewViperEmptyEnvDisablesHTTP(t *testing.T) {
	t.Setenv("NIGHTSCOUTBAR_HTTP_ADDR", "")

	v, err := NewViper("")
	require.NoError(t, err)

	assert.Equal(t, "", ProcessFrom(v).HTTPAddr)
}

func TestNewViperEnvOverridesProcess(t *testing.T) {
	t.Setenv("NIGHTSCOUTBAR_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("NIGHTSCOUTBAR_POLL_INTERVAL", "1m")

	v, err := NewViper("")
	require.NoError(t, err)

	proc := ProcessFrom(v)
	assert.Equal(t, "127.0.0.1:9999", proc.HTTPAddr)
	assert.Equal(t, time.Minute, proc.PollInterval)
}

func TestViperProviderReadsEnvOnEveryLoad(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	provider := NewViperProvider(v)

	t.Setenv("NIGHTSCOUTBAR_SERVERURL", "https://one.example.com")
	cfg, err := provider.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://one.example.com", cfg.ServerURL)

	t.Setenv("NIGHTSCOUTBAR_SERVERURL", "https://two.example.com")
	cfg, err = provider.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://two.example.com", cfg.ServerURL)
}

func TestStoreProvider(t *testing.T) {
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	fallback := Static(FetchConfig{ServerURL: "https://default.example.com", APISecret: "default"})
	provider := NewStoreProvider(store, fallback)

	cfg, err := provider.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://default.example.com", cfg.ServerURL)
	assert.False(t, cfg.DisplayInMmol)

	require.NoError(t, store.SetConfig(ctx, KeyServerURL, "https://stored.example.com"))
	require.NoError(t, store.SetConfig(ctx, KeyShowValuesInMmol, "true"))

	cfg, err = provider.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, FetchConfig{
		ServerURL:     "https://stored.example.com",
		APISecret:     "default",
		DisplayInMmol: true,
	}, cfg)
}

func TestStoreProviderInvalidBool(t *testing.T) {
	store, err := sqlite.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.SetConfig(ctx, KeyServerInMmol, "maybe"))

	_, err = NewStoreProvider(store, nil).Load(ctx)
	assert.ErrorContains(t, err, "not a boolean")
}

type failingStore struct {
	storage.Store
}

func (failingStore) GetConfig(context.Context, string) (string, error) {
	return "", errors.New("database is locked")
}

func TestStoreProviderStoreError(t *testing.T) {
	_, err := NewStoreProvider(failingStore{}, nil).Load(context.Background())
	assert.ErrorContains(t, err, "database is locked")
}

func TestNormalizeValue(t *testing.T) {
	v, err := NormalizeValue(KeyShowValuesInMmol, "1")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	v, err = NormalizeValue(KeyAPISecret, "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", v)

	_, err = NormalizeValue(KeyServerURL, "not a url")
	assert.Error(t, err)

	_, err = NormalizeValue("Theme", "dark")
	assert.ErrorContains(t, err, "unknown setting")

	_, err = NormalizeValue(KeyServerInMmol, "yes please")
	assert.Error(t, err)
}
