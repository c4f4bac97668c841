package cache

import "time"

// Store is a generic read-through cache used to memoize expensive
// repository queries, keyed by the normalized request they answer.
type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	// Purge drops every entry. Called after any write so list pages
	// never serve stale totals.
	Purge()
	Len() int
}

// Sweeper is implemented by caches that can evict expired entries.
type Sweeper interface {
	CleanExpired() int
}

// Janitor runs periodic expiry sweeps over registered caches.
type Janitor struct {
	caches []Sweeper
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor() *Janitor {
	return &Janitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (j *Janitor) Register(c Sweeper) {
	j.caches = append(j.caches, c)
}

// Start begins sweeping at the given interval until Stop is called.
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
			for _, c := range j.caches {
				c.CleanExpired()
			}
		case <-j.stop:
			return
		}
	}
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
