package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"example.com/fuzzy-control/base/metrics"
	"example.com/fuzzy-control/core/fuzzy"
)

const reloadDebounce = 100 * time.Millisecond

var (
	reloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ConfigReloadsN,
		Help: metrics.ConfigReloadsH,
	})
	reloadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ConfigReloadFailuresN,
		Help: metrics.ConfigReloadFailuresH,
	})
)

// Watch rebuilds the engine whenever the file at path changes and hands it
// to update. A configuration that fails to load is logged and dropped; the
// caller keeps running on the previous engine. Watch returns when ctx is
// done.
func Watch(ctx context.Context, log *zap.Logger, path string, update func(*fuzzy.Engine)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace the file, so watch its directory.
	name := filepath.Clean(path)
	err = w.Add(filepath.Dir(name))
	if err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name ||
				ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Info("config watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			e, err := reload(path)
			if err != nil {
				reloadFailures.Inc()
				log.Info("rejected configuration update", zap.String("path", path), zap.Error(err))
				continue
			}
			reloads.Inc()
			log.Info("loaded configuration update", zap.String("path", path))
			update(e)
		}
	}
}

func reload(path string) (*fuzzy.Engine, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Engine()
}
