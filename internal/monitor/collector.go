package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// DefaultPollTimeout bounds one router's snapshot.
const DefaultPollTimeout = 30 * time.Second

// Poller takes a snapshot of one router. *asuswrt.AsusWrt implements it.
type Poller interface {
	Snapshot(ctx context.Context, reachableOnly bool) (*asuswrt.Snapshot, error)
}

// Sink receives every successful snapshot, e.g. a NATS publisher.
type Sink interface {
	Publish(ctx context.Context, name string, snap *asuswrt.Snapshot) error
}

// Result is the outcome of polling one router.
type Result struct {
	Name     string
	Snapshot *asuswrt.Snapshot
	Err      error
	Duration time.Duration
}

// Collector polls a set of routers in parallel.
type Collector struct {
	routers       map[string]Poller
	timeout       time.Duration
	reachableOnly bool
	sink          Sink
	log           logger.Logger
}

// NewCollector creates a collector for the named routers.
func NewCollector(routers map[string]Poller) *Collector {
	return &Collector{
		routers: routers,
		timeout: DefaultPollTimeout,
		log:     logger.Noop(),
	}
}

// SetTimeout sets the per-router poll timeout.
func (c *Collector) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.timeout = timeout
	}
}

// SetReachableOnly drops STALE and FAILED devices from snapshots.
func (c *Collector) SetReachableOnly(v bool) {
	c.reachableOnly = v
}

// SetSink hands every successful snapshot to s after it is collected.
func (c *Collector) SetSink(s Sink) {
	c.sink = s
}

// SetLogger sets the logger for poll and publish failures.
func (c *Collector) SetLogger(l logger.Logger) {
	if l != nil {
		c.log = l
	}
}

// Names returns the router names in order.
func (c *Collector) Names() []string {
	names := make([]string, 0, len(c.routers))
	for name := range c.routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect polls every router concurrently and returns one Result per router,
// ordered by name. A router that fails does not affect the others.
func (c *Collector) Collect(ctx context.Context) []Result {
	names := c.Names()
	results := make([]Result, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = c.collectOne(ctx, name)
		}(i, name)
	}
	wg.Wait()

	return results
}

func (c *Collector) collectOne(ctx context.Context, name string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	snap, err := c.routers[name].Snapshot(ctx, c.reachableOnly)
	res := Result{Name: name, Snapshot: snap, Err: err, Duration: time.Since(start)}
	if err != nil {
		c.log.Warn("%s: poll failed: %v", name, err)
		return res
	}
	for part, msg := range snap.Errors {
		c.log.Debug("%s: %s unavailable: %s", name, part, msg)
	}

	if c.sink != nil {
		if err := c.sink.Publish(ctx, name, snap); err != nil {
			c.log.Warn("%s: publish failed: %v", name, err)
		}
	}
	return res
}
