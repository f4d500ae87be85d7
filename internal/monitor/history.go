package monitor

import (
	"sort"
	"sync"

	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// DefaultHistorySize is the default number of data points to retain per metric.
const DefaultHistorySize = 60

// Metric names a per-router series kept by History.
type Metric int

const (
	MetricRX Metric = iota
	MetricTX
	MetricLoad
	MetricMemory
	MetricDevices
	metricCount
)

// History keeps recent values per router in ring buffers for sparklines.
// It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	size    int
	routers map[string]*routerHistory
}

type routerHistory struct {
	series [metricCount]*ringBuffer
	temps  map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		routers: make(map[string]*routerHistory),
	}
}

// Push records a snapshot for the named router. Parts the snapshot failed to
// collect are not pushed, so a failing sensor leaves a gap rather than a zero.
func (h *History) Push(name string, snap *asuswrt.Snapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreate(name)
	failed := func(part string) bool {
		_, ok := snap.Errors[part]
		return ok
	}

	if !failed("rates") {
		hist.series[MetricRX].push(float64(snap.Rates.RX))
		hist.series[MetricTX].push(float64(snap.Rates.TX))
	}
	if !failed("load") {
		hist.series[MetricLoad].push(snap.Load[0])
	}
	if snap.Memory != nil && snap.Memory.TotalKB > 0 {
		hist.series[MetricMemory].push(float64(snap.Memory.UsedKB()) / float64(snap.Memory.TotalKB) * 100)
	}
	if !failed("devices") {
		hist.series[MetricDevices].push(float64(len(snap.Devices)))
	}
	for sensor, value := range snap.Temperatures {
		buf, ok := hist.temps[sensor]
		if !ok {
			buf = newRingBuffer(h.size)
			hist.temps[sensor] = buf
		}
		buf.push(value)
	}
}

// Get returns the last count values of metric for the named router, oldest
// first. Returns fewer values if not enough history is available.
func (h *History) Get(name string, metric Metric, count int) []float64 {
	if metric < 0 || metric >= metricCount {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.routers[name]
	if !ok {
		return nil
	}
	return hist.series[metric].getLast(count)
}

// GetTemperature returns the last count readings of a sensor.
func (h *History) GetTemperature(name, sensor string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.routers[name]
	if !ok {
		return nil
	}
	buf, ok := hist.temps[sensor]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Sensors returns the sensors seen for a router, sorted.
func (h *History) Sensors(name string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.routers[name]
	if !ok {
		return nil
	}
	sensors := make([]string, 0, len(hist.temps))
	for s := range hist.temps {
		sensors = append(sensors, s)
	}
	sort.Strings(sensors)
	return sensors
}

// Count returns the number of rate samples stored for a router.
func (h *History) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.routers[name]
	if !ok {
		return 0
	}
	return hist.series[MetricRX].count
}

// Clear removes all history for the named router.
func (h *History) Clear(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.routers, name)
}

// getOrCreate must be called with h.mu held.
func (h *History) getOrCreate(name string) *routerHistory {
	hist, ok := h.routers[name]
	if !ok {
		hist = &routerHistory{temps: make(map[string]*ringBuffer)}
		for i := range hist.series {
			hist.series[i] = newRingBuffer(h.size)
		}
		h.routers[name] = hist
	}
	return hist
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
