// Package cache holds small in-process caches for data that is read on most
// requests but rarely written, such as user period settings.
package cache

import (
	"sync"
	"time"

	"dompet/internal/log"
)

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans the caches registered with it.
type Janitor struct {
	mu       sync.Mutex
	caches   []Cleaner
	logger   *log.Logger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewJanitor(logger *log.Logger) *Janitor {
	return &Janitor{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (j *Janitor) Register(c Cleaner) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.caches = append(j.caches, c)
}

// Start runs the cleanup loop every interval until Stop is called.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.CleanAll(); n > 0 {
				j.logger.Debug("Expired cache entries removed", log.FieldCount, n)
			}
		case <-j.stop:
			return
		}
	}
}

// CleanAll cleans every registered cache once.
func (j *Janitor) CleanAll() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup loop started by Start. It must only be called after
// Start.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
		<-j.done
	})
}
