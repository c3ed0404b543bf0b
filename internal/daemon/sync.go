package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/oneko/internal/settings"
	"github.com/fsnotify/fsnotify"
)

// DefaultSyncDebounce coalesces bursts of writes to the settings file.
const DefaultSyncDebounce = 200 * time.Millisecond

// SettingsSyncConfig holds configuration for the settings synchronizer.
type SettingsSyncConfig struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// SettingsSynchronizer watches the settings file and mirrors changes made by
// other writers into the running companion. Writes made by the store itself
// are recognised and skipped.
type SettingsSynchronizer struct {
	store    *settings.Store
	apply    func(settings.Settings)
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	reloadChan chan struct{}
	stopOnce   sync.Once
}

// NewSettingsSynchronizer creates a synchronizer for store. apply receives
// every externally written settings record.
func NewSettingsSynchronizer(cfg SettingsSyncConfig, store *settings.Store, apply func(settings.Settings)) (*SettingsSynchronizer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SettingsSynchronizer{
		store:      store,
		apply:      apply,
		watcher:    watcher,
		debounce:   debounce,
		logger:     logger,
		reloadChan: make(chan struct{}, 1),
	}, nil
}

// Start begins watching. The settings directory is created if needed since
// the watch is placed on the directory rather than the file.
func (s *SettingsSynchronizer) Start(ctx context.Context) error {
	dir := filepath.Dir(s.store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
	}

	s.logger.Info("settings watcher started", "path", s.store.Path())

	go s.watchLoop(ctx)
	go s.reloadLoop(ctx)
	return nil
}

// Stop closes the underlying watcher.
func (s *SettingsSynchronizer) Stop() {
	s.stopOnce.Do(func() {
		if err := s.watcher.Close(); err != nil {
			s.logger.Error("error closing settings watcher", "error", err)
		}
	})
}

func (s *SettingsSynchronizer) watchLoop(ctx context.Context) {
	name := filepath.Base(s.store.Path())

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.logger.Debug("settings file changed", "op", event.Op.String())
				s.triggerReload()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("settings watcher error", "error", err)
		}
	}
}

func (s *SettingsSynchronizer) reloadLoop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.reloadChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, s.sync)
		}
	}
}

func (s *SettingsSynchronizer) triggerReload() {
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}
}

// sync reads the file and forwards it unless it is our own write.
func (s *SettingsSynchronizer) sync() {
	data, err := os.ReadFile(s.store.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read settings", "error", err)
		}
		return
	}
	if s.store.IsOwnWrite(data) {
		return
	}

	next, err := settings.Decode(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable settings", "error", err)
		return
	}

	s.logger.Info("settings changed on disk", "mode", next.Mode, "variant", next.Variant, "kuro_neko", next.KuroNeko)
	s.apply(next)
}
