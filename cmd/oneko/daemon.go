package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/oneko/internal/daemon"
	"github.com/1broseidon/oneko/internal/hotkeys"
	"github.com/1broseidon/oneko/internal/ipc"
	"github.com/1broseidon/oneko/internal/platform"
	"github.com/1broseidon/oneko/internal/runtimepath"
	"github.com/1broseidon/oneko/internal/settings"
	"github.com/1broseidon/oneko/internal/sprite"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/oneko/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: oneko daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the desktop companion in the foreground.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	// Load configuration
	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Single instance per user session
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		log.Printf("Failed to resolve lock path: %v", err)
		return 1
	}
	lock, err := daemon.AcquireLock(lockPath)
	if err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			log.Printf("oneko is already running (%s)", lockPath)
		} else {
			log.Printf("Failed to acquire lock: %v", err)
		}
		return 1
	}
	defer lock.Release()

	spriteDir, err := cfg.ResolveSpriteDir()
	if err != nil {
		log.Printf("Failed to resolve sprite directory: %v", err)
		return 1
	}
	settingsPath, err := cfg.ResolveSettingsPath()
	if err != nil {
		log.Printf("Failed to resolve settings path: %v", err)
		return 1
	}

	// Connect to display server
	backend, err := platform.NewLinuxBackend(platform.LinuxOptions{
		Display:     cfg.Display,
		XAuthority:  cfg.XAuthority,
		Background:  cfg.Background(),
		DoubleClick: cfg.DoubleClickInterval(),
		Sprites:     sprite.NewSheet(spriteDir),
	})
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer backend.Disconnect()

	store := settings.NewStore(settingsPath)
	runner, err := daemon.NewRunner(daemon.RunnerConfig{
		PointerInterval: cfg.PointerPollInterval(),
		Logger:          logger.With("component", "runner"),
	}, backend, store)
	if err != nil {
		log.Printf("Failed to start companion: %v", err)
		return 1
	}

	if err := backend.Bind(runner); err != nil {
		log.Printf("Failed to bind X11 events: %v", err)
		return 1
	}

	// Setup hotkey handler
	hotkeyHandler := hotkeys.NewHandler(backend, runner)
	if cfg.SleepHotkey != "" {
		if err := hotkeyHandler.RegisterSleep(cfg.SleepHotkey); err != nil {
			log.Printf("Warning: Failed to register sleep hotkey: %v", err)
		} else {
			log.Printf("Sleep hotkey registered: %s", cfg.SleepHotkey)
		}
	}
	if cfg.ModeHotkey != "" {
		if err := hotkeyHandler.RegisterModeCycle(cfg.ModeHotkey); err != nil {
			log.Printf("Warning: Failed to register mode hotkey: %v", err)
		} else {
			log.Printf("Mode hotkey registered: %s", cfg.ModeHotkey)
		}
	}

	// Start IPC server
	ipcServer, err := ipc.NewServer(runner)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.TopologyPollInterval(),
		Logger:   logger.With("component", "reconciler"),
	}, backend.Topology, runner.ApplyTopology)
	go reconciler.Run(ctx)

	synchronizer, err := daemon.NewSettingsSynchronizer(daemon.SettingsSyncConfig{
		Logger: logger.With("component", "settings-sync"),
	}, store, runner.MirrorSettings)
	if err != nil {
		log.Printf("Warning: settings file watching disabled: %v", err)
	} else if err := synchronizer.Start(ctx); err != nil {
		log.Printf("Warning: settings file watching disabled: %v", err)
	} else {
		defer synchronizer.Stop()
	}

	go runner.Run(ctx)

	log.Println("oneko daemon started successfully")
	go backend.EventLoop()
	defer backend.Quit()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Println("Received SIGHUP, reloading settings...")
			if err := runner.Reload(); err != nil {
				log.Printf("Reload failed: %v", err)
			}
		default:
			log.Println("Shutting down oneko daemon...")
			return 0
		}
	}
	return 0
}
