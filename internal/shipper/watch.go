package shipper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs ship passes on a fixed interval and additionally whenever
// a file in one of the watched directories changes. Filesystem events
// only wake the loop early; every pass is still a full scan, so a
// missed event costs at most one interval.
func (s *Shipper) Watch(ctx context.Context, interval time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range s.cfg.Dirs {
		if err := watcher.Add(dir); err != nil {
			// Fallback dir may not exist yet; the ticker still covers it.
			log.Printf("watch %s: %v", dir, err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Debounce bursts of write events into one delayed pass.
	var pending <-chan time.Time

	pass := func() {
		if err := s.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("ship pass: %v", err)
		}
	}

	pass()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pass()
		case <-pending:
			pending = nil
			pass()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && pending == nil {
				pending = time.After(time.Second)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		}
	}
}
