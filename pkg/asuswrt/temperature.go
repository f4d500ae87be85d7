package asuswrt

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
)

// errNoReading marks output that holds no number at the probe's index.
var errNoReading = stderrors.New("no numeric reading")

// GetTemperatures reads every sensor the router exposes, in degrees Celsius.
// The first candidate command that yields a number is remembered per sensor
// and used from then on. Sensors without a working command are absent from
// the result.
func (a *AsusWrt) GetTemperatures(ctx context.Context) (map[string]float64, error) {
	a.probeMu.Lock()
	defer a.probeMu.Unlock()

	temps := make(map[string]float64)
	var connErr error

	for _, sensor := range commands.Sensors {
		if probe, ok := a.probes[sensor]; ok {
			value, err := a.readProbe(ctx, probe)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				if errors.IsConnectionError(err) {
					connErr = err
				}
				a.log.Debug("temperature %s: %s: %v", sensor, probe.Command, err)
				continue
			}
			temps[sensor] = value
			continue
		}

		for _, probe := range commands.TempCommands[sensor] {
			value, err := a.readProbe(ctx, probe)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				if errors.IsConnectionError(err) {
					connErr = err
				}
				a.log.Debug("temperature %s: %s: %v", sensor, probe.Command, err)
				continue
			}
			a.log.Debug("temperature %s: using %s", sensor, probe.Command)
			a.probes[sensor] = probe
			temps[sensor] = value
			break
		}
	}

	if len(temps) == 0 && connErr != nil {
		return nil, connErr
	}
	return temps, nil
}

func (a *AsusWrt) readProbe(ctx context.Context, probe commands.TempCommand) (float64, error) {
	lines, ok, err := a.run(ctx, probe.Command)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errNoReading
	}

	// Split on single spaces: the dmu line separates its label with a tab.
	fields := strings.Split(strings.TrimSpace(firstLine(lines)), " ")
	if probe.Index >= len(fields) {
		return 0, errNoReading
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(fields[probe.Index]), 64)
	if err != nil {
		return 0, errNoReading
	}
	return probe.Convert(value), nil
}

// ResetTemperatureProbes forgets the adopted commands so the next
// GetTemperatures probes every candidate again.
func (a *AsusWrt) ResetTemperatureProbes() {
	a.probeMu.Lock()
	defer a.probeMu.Unlock()
	a.probes = make(map[string]commands.TempCommand)
}
