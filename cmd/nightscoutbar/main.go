// Package main is the entry point for the nightscoutbar glucose monitor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwulff/nightscoutbar-go/internal/api"
	"github.com/jwulff/nightscoutbar-go/internal/config"
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
	"github.com/jwulff/nightscoutbar-go/internal/render"
	"github.com/jwulff/nightscoutbar-go/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) < 2 || !isCommand(os.Args[1]) {
		showUsage()
		return
	}

	a, err := newApp()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	code := 0
	switch os.Args[1] {
	case "watch":
		code = watchMode(a)
	case "once":
		code = fetchOnce(a)
	case "set":
		if len(os.Args) < 4 {
			fmt.Println("Error: key and value required")
			fmt.Println("Usage: nightscoutbar set <key> <value>")
			code = 1
			break
		}
		code = setSetting(a, os.Args[2], os.Args[3])
	case "get":
		key := ""
		if len(os.Args) > 2 {
			key = os.Args[2]
		}
		code = getSetting(a, key)
	case "unset":
		if len(os.Args) < 3 {
			fmt.Println("Error: key required")
			fmt.Println("Usage: nightscoutbar unset <key>")
			code = 1
			break
		}
		code = unsetSetting(a, os.Args[2])
	case "list":
		code = listSettings(a)
	}

	a.Close()
	os.Exit(code)
}

func isCommand(name string) bool {
	switch name {
	case "watch", "once", "set", "get", "unset", "list":
		return true
	}
	return false
}

func showUsage() {
	fmt.Println("Usage:")
	fmt.Println("  nightscoutbar watch              - Poll Nightscout and print the title on every update")
	fmt.Println("  nightscoutbar once               - Fetch once and print the diagnostics log")
	fmt.Println("  nightscoutbar set <key> <value>  - Store a setting")
	fmt.Println("  nightscoutbar get [key]          - Show stored or effective settings")
	fmt.Println("  nightscoutbar unset <key>        - Remove a stored setting")
	fmt.Println("  nightscoutbar list               - List stored settings")
	fmt.Println()
	fmt.Println("Settings:")
	fmt.Println("  ServerURL         - Nightscout base URL, e.g. https://my.nightscout.example")
	fmt.Println("  APISecret         - API secret, sent hashed")
	fmt.Println("  ShowValuesInMmol  - Display mmol/L instead of mg/dL")
	fmt.Println("  ServerInMmol      - Server reports mmol/L")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  NIGHTSCOUTBAR_CONFIG      - Explicit config file path")
	fmt.Println("  NIGHTSCOUTBAR_SERVERURL   - Default ServerURL when none is stored")
	fmt.Println("  NIGHTSCOUTBAR_HTTP_ADDR   - HTTP API address (empty disables)")
}

func watchMode(a *app) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv api.Server
	serveErr := make(chan error, 1)
	if a.proc.HTTPAddr != "" {
		handler := api.NewHandler(a.states, a.poller, a.log)
		if err := srv.Listen(a.proc.HTTPAddr, handler.InitRoutes()); err != nil {
			fmt.Printf("Error: %v\n", err)
			return 1
		}
		a.log.Infow("http_listening", "addr", srv.Addr())
		go func() { serveErr <- srv.Serve() }()
	}

	updates, cancel := a.states.Subscribe()
	defer cancel()

	fmt.Println(render.Title(a.states.Snapshot()))
	a.poller.Start(ctx)

	code := 0
loop:
	for {
		select {
		case st := <-updates:
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), render.Title(st))
		case err := <-serveErr:
			if err != nil {
				a.log.Errorw("http_serve_failed", "err", err)
				code = 1
			}
			break loop
		case <-ctx.Done():
			fmt.Println("\nStopping...")
			break loop
		}
	}

	a.poller.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warnw("http_shutdown_failed", "err", err)
	}

	a.poller.Wait()
	return code
}

func fetchOnce(a *app) int {
	st := a.poller.FetchOnce(context.Background())

	fmt.Print(diagnostics.Join(st.Diagnostics))
	fmt.Println()
	fmt.Println(render.Title(st))

	if st.Status == diagnostics.StatusError {
		return 1
	}
	return 0
}

func setSetting(a *app, key, value string) int {
	normalized, err := config.NormalizeValue(key, value)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if err := a.settings.SetConfig(context.Background(), key, normalized); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("%s saved\n", key)
	return 0
}

func getSetting(a *app, key string) int {
	ctx := context.Background()

	if key != "" {
		if !config.IsKnownKey(key) {
			fmt.Printf("Error: unknown setting %q\n", key)
			return 1
		}
		value, err := a.settings.GetConfig(ctx, key)
		if storage.IsNotFound(err) {
			fmt.Printf("%s is not stored\n", key)
			return 0
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return 1
		}
		if key == config.KeyAPISecret {
			value = config.MaskSecret(value)
		}
		fmt.Printf("%s = %s\n", key, value)
		return 0
	}

	cfg, err := a.provider.Load(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("%-17s %s\n", config.KeyServerURL, cfg.ServerURL)
	fmt.Printf("%-17s %s\n", config.KeyAPISecret, config.MaskSecret(cfg.APISecret))
	fmt.Printf("%-17s %t\n", config.KeyShowValuesInMmol, cfg.DisplayInMmol)
	fmt.Printf("%-17s %t\n", config.KeyServerInMmol, cfg.ServerInMmol)
	return 0
}

func unsetSetting(a *app, key string) int {
	if !config.IsKnownKey(key) {
		fmt.Printf("Error: unknown setting %q\n", key)
		return 1
	}
	if err := a.settings.DeleteConfig(context.Background(), key); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("%s removed\n", key)
	return 0
}

func listSettings(a *app) int {
	settings, err := a.settings.ListConfig(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(settings) == 0 {
		fmt.Println("No stored settings.")
		return 0
	}
	for _, s := range settings {
		value := s.Value
		if s.Key == config.KeyAPISecret {
			value = config.MaskSecret(value)
		}
		fmt.Printf("%-17s %-40s %s\n", s.Key, value, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return 0
}
