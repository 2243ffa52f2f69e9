package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Process configuration keys.
const (
	keyLogLevel     = "log_level"
	keyHTTPAddr     = "http.addr"
	keySettingsDB   = "settings.db"
	keyPollInterval = "poll.interval"
	keyPollTimeout  = "poll.timeout"
)

// EnvPrefix prefixes environment overrides, e.g. NIGHTSCOUTBAR_SERVERURL.
const EnvPrefix = "NIGHTSCOUTBAR"

// Process holds the settings that shape the running process.
type Process struct {
	LogLevel     string
	HTTPAddr     string
	SettingsDB   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewViper builds a viper instance with defaults, environment overrides and,
// when present, a nightscoutbar.yaml from the working directory or
// $HOME/.config/nightscoutbar. A non-empty configFile is read explicitly and
// must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyHTTPAddr, "127.0.0.1:8787")
	v.SetDefault(keySettingsDB, "nightscoutbar.db")
	v.SetDefault(keyPollInterval, 30*time.Second)
	v.SetDefault(keyPollTimeout, 20*time.Second)
	v.SetDefault(KeyServerURL, "")
	v.SetDefault(KeyAPISecret, "")
	v.SetDefault(KeyShowValuesInMmol, false)
	v.SetDefault(KeyServerInMmol, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// An empty NIGHTSCOUTBAR_HTTP_ADDR must be able to disable the API.
	v.AllowEmptyEnv(true)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("nightscoutbar")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/nightscoutbar")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// ProcessFrom extracts the process settings from v.
func ProcessFrom(v *viper.Viper) Process {
	return Process{
		LogLevel:     v.GetString(keyLogLevel),
		HTTPAddr:     v.GetString(keyHTTPAddr),
		SettingsDB:   v.GetString(keySettingsDB),
		PollInterval: v.GetDuration(keyPollInterval),
		PollTimeout:  v.GetDuration(keyPollTimeout),
	}
}

// ViperProvider reads the fetch settings from viper on every Load.
type ViperProvider struct {
	v *viper.Viper
}

// NewViperProvider creates a provider backed by v.
func NewViperProvider(v *viper.Viper) *ViperProvider {
	return &ViperProvider{v: v}
}

// Load implements Provider.
func (p *ViperProvider) Load(context.Context) (FetchConfig, error) {
	return FetchConfig{
		ServerURL:     p.v.GetString(KeyServerURL),
		APISecret:     p.v.GetString(KeyAPISecret),
		DisplayInMmol: p.v.GetBool(KeyShowValuesInMmol),
		ServerInMmol:  p.v.GetBool(KeyServerInMmol),
	}, nil
}

var _ Provider = (*ViperProvider)(nil)
