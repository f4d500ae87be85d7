package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// InterfaceCounters holds the sixteen counters of one /proc/net/dev row.
type InterfaceCounters struct {
	RxBytes      uint64 `json:"rx_bytes" yaml:"rx_bytes"`
	RxPackets    uint64 `json:"rx_packets" yaml:"rx_packets"`
	RxErrs       uint64 `json:"rx_errs" yaml:"rx_errs"`
	RxDrop       uint64 `json:"rx_drop" yaml:"rx_drop"`
	RxFifo       uint64 `json:"rx_fifo" yaml:"rx_fifo"`
	RxFrame      uint64 `json:"rx_frame" yaml:"rx_frame"`
	RxCompressed uint64 `json:"rx_compressed" yaml:"rx_compressed"`
	RxMulticast  uint64 `json:"rx_multicast" yaml:"rx_multicast"`
	TxBytes      uint64 `json:"tx_bytes" yaml:"tx_bytes"`
	TxPackets    uint64 `json:"tx_packets" yaml:"tx_packets"`
	TxErrs       uint64 `json:"tx_errs" yaml:"tx_errs"`
	TxDrop       uint64 `json:"tx_drop" yaml:"tx_drop"`
	TxFifo       uint64 `json:"tx_fifo" yaml:"tx_fifo"`
	TxColls      uint64 `json:"tx_colls" yaml:"tx_colls"`
	TxCarrier    uint64 `json:"tx_carrier" yaml:"tx_carrier"`
	TxCompressed uint64 `json:"tx_compressed" yaml:"tx_compressed"`
}

// MemInfo holds the /proc/meminfo values the CLI reports, in kB.
type MemInfo struct {
	TotalKB     uint64 `json:"mem_total_kb" yaml:"mem_total_kb"`
	FreeKB      uint64 `json:"mem_free_kb" yaml:"mem_free_kb"`
	AvailableKB uint64 `json:"mem_available_kb" yaml:"mem_available_kb"`
	BuffersKB   uint64 `json:"buffers_kb" yaml:"buffers_kb"`
	CachedKB    uint64 `json:"cached_kb" yaml:"cached_kb"`
	SwapTotalKB uint64 `json:"swap_total_kb" yaml:"swap_total_kb"`
	SwapFreeKB  uint64 `json:"swap_free_kb" yaml:"swap_free_kb"`
}

// UsedKB is memory in use excluding buffers and page cache.
func (m MemInfo) UsedKB() uint64 {
	reclaim := m.FreeKB + m.BuffersKB + m.CachedKB
	if reclaim > m.TotalKB {
		return 0
	}
	return m.TotalKB - reclaim
}

// ParseNetDev parses /proc/net/dev output into counters keyed by interface.
// The two header lines are skipped; short or malformed rows are ignored.
func ParseNetDev(lines []string) (map[string]InterfaceCounters, error) {
	result := make(map[string]InterfaceCounters)

	for i, line := range lines {
		if i < 2 {
			continue
		}

		// Format: "  iface: bytes packets errs drop fifo frame compressed multicast bytes packets..."
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if len(fields) < 16 {
			continue
		}

		var values [16]uint64
		for j := range values {
			v, err := strconv.ParseUint(fields[j], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse counter %d for %s: %w", j, name, err)
			}
			values[j] = v
		}

		result[name] = InterfaceCounters{
			RxBytes: values[0], RxPackets: values[1], RxErrs: values[2], RxDrop: values[3],
			RxFifo: values[4], RxFrame: values[5], RxCompressed: values[6], RxMulticast: values[7],
			TxBytes: values[8], TxPackets: values[9], TxErrs: values[10], TxDrop: values[11],
			TxFifo: values[12], TxColls: values[13], TxCarrier: values[14], TxCompressed: values[15],
		}
	}

	return result, nil
}

// ParseLoadAvg returns the 1, 5 and 15 minute load averages.
func ParseLoadAvg(lines []string) ([3]float64, error) {
	var load [3]float64
	if len(lines) == 0 {
		return load, fmt.Errorf("empty /proc/loadavg output")
	}

	fields := strings.Fields(strings.TrimSpace(lines[0]))
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg line: %q", lines[0])
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// ParseMemInfo parses /proc/meminfo output.
func ParseMemInfo(lines []string) (MemInfo, error) {
	var info MemInfo
	scanner := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))

	found := 0
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}

		switch key {
		case "MemTotal":
			info.TotalKB = val
		case "MemFree":
			info.FreeKB = val
		case "MemAvailable":
			info.AvailableKB = val
		case "Buffers":
			info.BuffersKB = val
		case "Cached":
			info.CachedKB = val
		case "SwapTotal":
			info.SwapTotalKB = val
		case "SwapFree":
			info.SwapFreeKB = val
		default:
			continue
		}
		found++
	}

	if err := scanner.Err(); err != nil {
		return info, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if info.TotalKB == 0 || found < 2 {
		return info, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}
	return info, nil
}
