package store

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	collectorQueue = 256
	collectorBatch = 64
)

// Collector records replacements in the background. Replaced never blocks:
// when the queue is full the hit is dropped and counted.
type Collector struct {
	store *Store
	log   *slog.Logger

	hits    chan Hit
	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// NewCollector starts a collector writing to s.
func NewCollector(s *Store, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	c := &Collector{
		store: s,
		log:   log,
		hits:  make(chan Hit, collectorQueue),
		done:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Replaced queues one replacement of trigger.
func (c *Collector) Replaced(trigger string, at time.Time) {
	select {
	case c.hits <- Hit{Trigger: trigger, At: at}:
	default:
		c.dropped.Add(1)
	}
}

// Dropped returns the number of hits lost to a full queue.
func (c *Collector) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Collector) loop() {
	defer close(c.done)

	batch := make([]Hit, 0, collectorBatch)
	for h := range c.hits {
		batch = append(batch[:0], h)
	drain:
		for len(batch) < collectorBatch {
			select {
			case next, ok := <-c.hits:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}

		if err := c.store.RecordBatch(batch); err != nil {
			c.log.Warn("record stats", "hits", len(batch), "error", err)
		}
	}
}

// Close writes every queued hit and stops the collector. Replaced must not
// be called after Close.
func (c *Collector) Close() error {
	c.closeOnce.Do(func() {
		close(c.hits)
	})
	<-c.done

	if n := c.Dropped(); n > 0 {
		c.log.Warn("stats dropped", "hits", n)
	}
	return nil
}
