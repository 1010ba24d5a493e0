package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/geometry"
	"github.com/hyprplug/hyprplugd/internal/ipc"
	"github.com/hyprplug/hyprplugd/internal/plugin"
	"github.com/hyprplug/hyprplugd/internal/reload"
	"github.com/hyprplug/hyprplugd/internal/runtime"
	"github.com/hyprplug/hyprplugd/internal/scratchpad"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "hyprplugd",
		Level: hclog.LevelFromString(envOr("HYPRPLUG_LOG_LEVEL", "info")),
	})

	if err := run(logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

// run builds and serves the daemon. At startup it returns non-nil only
// when the session signature is missing or the IPC listening socket cannot
// be bound; a configuration that fails to load or a backup directory that
// cannot be created is logged and the daemon carries on. After a clean
// shutdown it returns the first error a long-running task (event stream,
// config watcher, IPC accept loop) reported, or nil.
func run(logger hclog.Logger) error {
	reqSock, eventSock, err := compositor.DefaultSocketPaths()
	if err != nil {
		return fmt.Errorf("%w (is hyprplugd running under a compositor session?)", err)
	}

	gw := compositor.New(reqSock, eventSock, logger)
	geo := geometry.NewCache()
	engine := scratchpad.NewEngine(gw, geo, nil, logger)

	registry := plugin.NewRegistry(append(
		[]plugin.Plugin{plugin.NewNotifier(logger)},
		plugin.DefaultStubs()...,
	)...)

	core := runtime.NewCore(gw, geo, engine, registry, logger)

	cfgPath := configPath()
	if err := core.Bootstrap(cfgPath); err != nil {
		logger.Warn("starting with zero scratchpads, configuration failed to load", "path", cfgPath, "error", err)
	}

	ring, err := reload.NewBackupRing(reload.DefaultDir(), reload.DefaultBackupCount)
	if err != nil {
		logger.Warn("configuration backups disabled", "error", err)
		ring = nil
	}
	reloadMgr := reload.NewManager(cfgPath, core, ring, reload.DefaultDebounce, logger)
	core.SetReloadManager(reloadMgr)

	sockPath, err := ipc.DefaultSocketPath()
	if err != nil {
		return err
	}
	server := ipc.NewServer(sockPath, core, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bind synchronously: this is the one startup error that should stop
	// the daemon instead of degrading (§6.6, §7).
	ln, err := server.Listen(ctx)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("SIGHUP received, reloading configuration")
				if err := reloadMgr.Reload(ctx); err != nil {
					logger.Warn("reload failed", "error", err)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Info("shutting down", "signal", sig)
				cancel()
				return
			}
		}
	}()

	return core.Run(ctx, func(ctx context.Context) error { return server.Serve(ctx, ln) })
}

func configPath() string {
	if p := os.Getenv("HYPRPLUG_CONFIG"); p != "" {
		return p
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "hypr", "hyprplug.toml")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
