package main

import (
	"fmt"
	"os"

	"github.com/jwulff/nightscoutbar-go/internal/config"
	"github.com/jwulff/nightscoutbar-go/internal/logger"
	"github.com/jwulff/nightscoutbar-go/internal/nightscout"
	"github.com/jwulff/nightscoutbar-go/internal/poller"
	"github.com/jwulff/nightscoutbar-go/internal/state"
	"github.com/jwulff/nightscoutbar-go/internal/storage/sqlite"
)

// configFileEnv names an explicit config file; otherwise nightscoutbar.yaml
// is looked up in the usual places.
const configFileEnv = "NIGHTSCOUTBAR_CONFIG"

// app holds the wired components shared by the subcommands.
type app struct {
	proc     config.Process
	log      *logger.Logger
	settings *sqlite.Store
	provider config.Provider
	states   *state.Store
	poller   *poller.Poller
}

func newApp() (*app, error) {
	v, err := config.NewViper(os.Getenv(configFileEnv))
	if err != nil {
		return nil, err
	}
	proc := config.ProcessFrom(v)
	log := logger.Get(proc.LogLevel)

	settings, err := sqlite.NewFileStore(proc.SettingsDB)
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", proc.SettingsDB, err)
	}

	// Stored settings win; viper (file and environment) fills the rest.
	provider := config.NewStoreProvider(settings, config.NewViperProvider(v))

	pcfg := poller.DefaultConfig()
	if proc.PollInterval > 0 {
		pcfg.Interval = proc.PollInterval
	}
	if proc.PollTimeout > 0 {
		pcfg.Timeout = proc.PollTimeout
	}
	if pcfg.Timeout > pcfg.Interval {
		pcfg.Timeout = pcfg.Interval
	}

	states := state.NewStore()
	p, err := poller.New(pcfg, provider, nightscout.NewClient(pcfg.Timeout), states, log)
	if err != nil {
		_ = settings.Close()
		return nil, err
	}

	log.Debugw("app_configured",
		"settings_db", proc.SettingsDB,
		"http_addr", proc.HTTPAddr,
		"interval", pcfg.Interval,
		"timeout", pcfg.Timeout,
	)

	return &app{
		proc:     proc,
		log:      log,
		settings: settings,
		provider: provider,
		states:   states,
		poller:   p,
	}, nil
}

func (a *app) Close() {
	if err := a.settings.Close(); err != nil {
		a.log.Warnw("settings_close_failed", "err", err)
	}
	_ = a.log.Sync()
}
