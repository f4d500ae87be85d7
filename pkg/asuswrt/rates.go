package asuswrt

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/parsers"
)

// InterfaceCounters are the /proc/net/dev counters of one interface.
type InterfaceCounters = parsers.InterfaceCounters

// TransferRates are receive and transmit rates in bytes per second. The same
// shape carries cumulative byte totals from GetTotalTransfer.
type TransferRates struct {
	RX uint64 `json:"rx" yaml:"rx"`
	TX uint64 `json:"tx" yaml:"tx"`
}

// rateState is the previous sample used to turn counters into rates.
type rateState struct {
	sampled bool
	at      time.Time
	rx, tx  uint64
	last    TransferRates
}

// GetInterfacesCounters returns the counters of every interface.
func (a *AsusWrt) GetInterfacesCounters(ctx context.Context) (map[string]InterfaceCounters, error) {
	lines, ok, err := a.run(ctx, commands.NetDev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrNoData, "Router returned an empty /proc/net/dev", "")
	}
	counters, err := parsers.ParseNetDev(lines)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse, "Couldn't parse /proc/net/dev", "")
	}
	return counters, nil
}

// GetTotalTransfer returns the bytes moved over the WAN link: the WAN
// interface counters minus those of the VLAN interface, which carries
// LAN-side traffic on the same switch port.
func (a *AsusWrt) GetTotalTransfer(ctx context.Context) (TransferRates, error) {
	counters, err := a.GetInterfacesCounters(ctx)
	if err != nil {
		return TransferRates{}, err
	}

	vlan := counters[a.settings.VLANInterface]
	wan, ok := counters[a.settings.WANInterface]
	if !ok {
		// Some firmware hides the WAN port from /proc/net/dev but still
		// exposes its sysfs statistics.
		sysfs, sysErr := a.GetInterfaceTransfer(ctx, a.settings.WANInterface)
		if sysErr != nil {
			a.log.Debug("sysfs counters for %s unavailable: %v", a.settings.WANInterface, sysErr)
			return TransferRates{}, errors.New(errors.ErrNoData,
				fmt.Sprintf("WAN interface %s not found on the router", a.settings.WANInterface),
				"Set wan_interface in your config; see `asuswrt interfaces` for the names")
		}
		wan = InterfaceCounters{RxBytes: sysfs.RX, TxBytes: sysfs.TX}
	}

	return TransferRates{
		RX: counterSub(wan.RxBytes, vlan.RxBytes),
		TX: counterSub(wan.TxBytes, vlan.TxBytes),
	}, nil
}

// GetInterfaceTransfer reads the cumulative byte counters of iface from
// /sys/class/net.
func (a *AsusWrt) GetInterfaceTransfer(ctx context.Context, iface string) (TransferRates, error) {
	rx, err := a.readCounter(ctx, commands.RxBytes(iface))
	if err != nil {
		return TransferRates{}, err
	}
	tx, err := a.readCounter(ctx, commands.TxBytes(iface))
	if err != nil {
		return TransferRates{}, err
	}
	return TransferRates{RX: rx, TX: tx}, nil
}

func (a *AsusWrt) readCounter(ctx context.Context, command string) (uint64, error) {
	lines, ok, err := a.run(ctx, command)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New(errors.ErrNoData, fmt.Sprintf("No output from %q", command), "")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(firstLine(lines)), 10, 64)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrParse, fmt.Sprintf("Couldn't parse output of %q", command), "")
	}
	return n, nil
}

// counterSub returns a - b for byte counters that may be 32 or 64 bits wide.
// When a is smaller and b still fits in 32 bits, a has wrapped and the
// result is (a + 2^32) - b. A smaller a against a 64-bit b is a reset and
// gives zero.
func counterSub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	if b <= math.MaxUint32 {
		return a + 1<<32 - b
	}
	return 0
}

// counterDelta is the increase of a counter between two samples.
func counterDelta(prev, cur uint64) uint64 {
	return counterSub(cur, prev)
}

// GetCurrentTransferRates returns WAN rates since the previous call. The
// first call has no previous sample and returns zero rates. Calls within
// Settings.RateInterval of the last sample return the last rates.
func (a *AsusWrt) GetCurrentTransferRates(ctx context.Context) (TransferRates, error) {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := a.now()
	if a.rates.sampled && a.settings.RateInterval > 0 && now.Sub(a.rates.at) < a.settings.RateInterval {
		return a.rates.last, nil
	}

	total, err := a.GetTotalTransfer(ctx)
	if err != nil {
		return TransferRates{}, err
	}

	if !a.rates.sampled {
		a.rates = rateState{sampled: true, at: now, rx: total.RX, tx: total.TX}
		return TransferRates{}, nil
	}

	elapsed := now.Sub(a.rates.at).Seconds()
	if elapsed <= 0 {
		return a.rates.last, nil
	}

	rates := TransferRates{
		RX: perSecond(counterDelta(a.rates.rx, total.RX), elapsed),
		TX: perSecond(counterDelta(a.rates.tx, total.TX), elapsed),
	}
	a.rates = rateState{sampled: true, at: now, rx: total.RX, tx: total.TX, last: rates}
	return rates, nil
}

func perSecond(delta uint64, seconds float64) uint64 {
	if delta == 0 {
		return 0
	}
	return uint64(math.Ceil(float64(delta) / seconds))
}

// GetCurrentTransferRatesHuman formats GetCurrentTransferRates as "1.2 MB/s".
func (a *AsusWrt) GetCurrentTransferRatesHuman(ctx context.Context) (rx, tx string, err error) {
	rates, err := a.GetCurrentTransferRates(ctx)
	if err != nil {
		return "", "", err
	}
	return HumanRate(rates.RX), HumanRate(rates.TX), nil
}

// HumanRate formats a bytes-per-second value.
func HumanRate(bytesPerSecond uint64) string {
	return humanize.Bytes(bytesPerSecond) + "/s"
}
