package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.Equal(t, tt.expected, h.size)
			assert.NotNil(t, h.routers)
		})
	}
}

func TestHistory_Push(t *testing.T) {
	h := NewHistory(10)

	h.Push("home", testSnapshot(1000, 200))
	h.Push("home", testSnapshot(3000, 400))
	h.Push("home", nil)

	assert.Equal(t, 2, h.Count("home"))
	assert.Equal(t, []float64{1000, 3000}, h.Get("home", MetricRX, 10))
	assert.Equal(t, []float64{200, 400}, h.Get("home", MetricTX, 10))
	assert.Equal(t, []float64{0.42, 0.42}, h.Get("home", MetricLoad, 10))
	assert.Equal(t, []float64{50, 50}, h.Get("home", MetricMemory, 10))
	assert.Equal(t, []float64{3, 3}, h.Get("home", MetricDevices, 10))
	assert.Equal(t, []float64{77, 77}, h.GetTemperature("home", "CPU", 10))
	assert.Equal(t, []string{"2.4GHz", "CPU"}, h.Sensors("home"))

	assert.Nil(t, h.Get("office", MetricRX, 10))
	assert.Nil(t, h.Get("home", Metric(42), 10))
	assert.Nil(t, h.GetTemperature("home", "5GHz", 10))
	assert.Nil(t, h.Sensors("office"))
}

func TestHistory_SkipsFailedParts(t *testing.T) {
	h := NewHistory(10)

	snap := testSnapshot(1000, 200)
	snap.Errors = map[string]string{"rates": "boom", "load": "boom", "devices": "boom"}
	snap.Memory = nil
	h.Push("home", snap)

	assert.Zero(t, h.Count("home"))
	assert.Nil(t, h.Get("home", MetricLoad, 10))
	assert.Nil(t, h.Get("home", MetricMemory, 10))
	assert.Nil(t, h.Get("home", MetricDevices, 10))
	assert.Equal(t, []float64{52}, h.GetTemperature("home", "2.4GHz", 10))
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10)
	h.Push("home", testSnapshot(1, 1))
	h.Clear("home")
	assert.Zero(t, h.Count("home"))
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory(50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Push("home", testSnapshot(uint64(i*j), 0))
				_ = h.Get("home", MetricRX, 10)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, h.Count("home"))
}

func TestRingBuffer(t *testing.T) {
	r := newRingBuffer(3)
	assert.Nil(t, r.getLast(2))

	r.push(1)
	r.push(2)
	assert.Equal(t, []float64{1, 2}, r.getLast(5))

	r.push(3)
	r.push(4)
	require.Equal(t, 3, r.count)
	assert.Equal(t, []float64{2, 3, 4}, r.getLast(3))
	assert.Equal(t, []float64{3, 4}, r.getLast(2))
	assert.Nil(t, r.getLast(0))
}

func TestHistory_MemoryPercent(t *testing.T) {
	h := NewHistory(5)
	snap := testSnapshot(0, 0)
	snap.Memory = &asuswrt.MemInfo{TotalKB: 200, FreeKB: 20, BuffersKB: 10, CachedKB: 20}
	h.Push("home", snap)
	assert.Equal(t, []float64{75}, h.Get("home", MetricMemory, 5))
}
