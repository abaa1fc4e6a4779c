package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Purger is implemented by caches with expiring entries.
type Purger interface {
	PurgeExpired() int
}

// Sweeper periodically purges expired entries from registered caches.
type Sweeper struct {
	caches   []Purger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewSweeper(caches ...Purger) *Sweeper {
	return &Sweeper{
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (s *Sweeper) Start(interval time.Duration) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, c := range s.caches {
					removed += c.PurgeExpired()
				}
				if removed > 0 {
					slog.Debug("Purged expired cache entries", "component", "cache", "removed", removed)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for it. Safe to call more than once, and on
// a sweeper that was never started.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	select {
	case <-s.done:
	case <-time.After(time.Second):
	}
}
