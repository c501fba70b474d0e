package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/telekom/das-schiff-route-agent/pkg/debounce"
)

const reloadDebounceTime = 2 * time.Second

// Watcher reloads the configuration file on change and publishes the new
// snapshot through the store. Reloads are debounced because editors and
// config management tend to emit several events per write.
type Watcher struct {
	store     *Store
	logger    logr.Logger
	debouncer *debounce.Debouncer
	onReload  func(*Config)
}

func NewWatcher(store *Store, onReload func(*Config), logger logr.Logger) *Watcher {
	w := &Watcher{
		store:    store,
		logger:   logger.WithName("config-watcher"),
		onReload: onReload,
	}
	w.debouncer = debounce.NewDebouncer(w.reload, reloadDebounceTime)
	return w
}

func (w *Watcher) reload(_ context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("error reloading config: %w", err)
	}
	w.store.Set(cfg)
	w.logger.Info("configuration reloaded", "vrfs", len(cfg.VRFConfig))
	if w.onReload != nil {
		w.onReload(cfg)
	}
	return nil
}

// Run watches the config file until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	configFile := defaultConfigFile
	if val := os.Getenv("ROUTE_AGENT_CONFIG"); val != "" {
		configFile = val
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(configFile); err != nil {
		return fmt.Errorf("error watching %s: %w", configFile, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.debouncer.Debounce(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err, "file watcher error")
		}
	}
}
