package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func testSnapshot(rx, tx uint64) *asuswrt.Snapshot {
	return &asuswrt.Snapshot{
		Time:   testTime,
		Router: "admin@192.168.1.1",
		Devices: map[string]asuswrt.Device{
			"01:02:03:04:05:06": {MAC: "01:02:03:04:05:06", IP: "192.168.1.10", Name: "laptop", Status: "REACHABLE", RSSI: intPtr(-60)},
			"0A:0B:0C:0D:0E:0F": {MAC: "0A:0B:0C:0D:0E:0F", IP: "192.168.1.9", Name: "Desktop", Status: "DELAY"},
			"AA:BB:CC:DD:EE:FF": {MAC: "AA:BB:CC:DD:EE:FF", IP: "192.168.1.100", Name: "phone", RSSI: intPtr(-40)},
		},
		Rates:        asuswrt.TransferRates{RX: rx, TX: tx},
		Temperatures: map[string]float64{"2.4GHz": 52, "CPU": 77},
		Load:         asuswrt.LoadAverage{0.42, 0.30, 0.25},
		Memory:       &asuswrt.MemInfo{TotalKB: 1000, FreeKB: 500},
	}
}

// fakePoller returns canned snapshots in order, repeating the last one.
type fakePoller struct {
	mu        sync.Mutex
	snaps     []*asuswrt.Snapshot
	err       error
	calls     int
	reachable []bool
	block     bool
}

func (f *fakePoller) Snapshot(ctx context.Context, reachableOnly bool) (*asuswrt.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	f.reachable = append(f.reachable, reachableOnly)
	block, err := f.block, f.err
	var snap *asuswrt.Snapshot
	if len(f.snaps) > 0 {
		snap = f.snaps[0]
		if len(f.snaps) > 1 {
			f.snaps = f.snaps[1:]
		}
	}
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

type published struct {
	name string
	snap *asuswrt.Snapshot
}

type fakeSink struct {
	mu   sync.Mutex
	got  []published
	fail error
}

func (s *fakeSink) Publish(_ context.Context, name string, snap *asuswrt.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.got = append(s.got, published{name: name, snap: snap})
	return nil
}
