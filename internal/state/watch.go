package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watch reports keys of s changed by other processes until ctx is done.
// Bursts of events for the same key are folded into a single call to fn.
func Watch(ctx context.Context, s *FileStore, debounce time.Duration, logger *slog.Logger, fn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.Dir()); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			key, ok := s.KeyForPath(event.Name)
			if !ok {
				continue
			}

			mu.Lock()
			if t, exists := timers[key]; exists {
				t.Stop()
			}
			timers[key] = time.AfterFunc(debounce, func() {
				if ctx.Err() != nil {
					return
				}
				logger.Debug("state file changed", "key", key, "file", event.Name)
				fn(key)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
