package asuswrt

import (
	"context"
	"time"
)

// Snapshot is one poll of everything the watch dashboard shows. Parts that
// failed are missing and their error text is kept in Errors.
type Snapshot struct {
	Time         time.Time          `json:"time" yaml:"time"`
	Router       string             `json:"router" yaml:"router"`
	Devices      map[string]Device  `json:"devices" yaml:"devices"`
	Rates        TransferRates      `json:"rates" yaml:"rates"`
	Temperatures map[string]float64 `json:"temperatures,omitempty" yaml:"temperatures,omitempty"`
	Load         LoadAverage        `json:"load" yaml:"load"`
	Memory       *MemInfo           `json:"memory,omitempty" yaml:"memory,omitempty"`
	Errors       map[string]string  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Snapshot polls devices, rates, temperatures, load and memory in turn. Only
// a cancelled context makes it fail; every other error is recorded.
func (a *AsusWrt) Snapshot(ctx context.Context, reachableOnly bool) (*Snapshot, error) {
	snap := &Snapshot{
		Time:   a.now(),
		Router: a.conn.Description(),
		Errors: make(map[string]string),
	}

	record := func(part string, err error) error {
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		snap.Errors[part] = err.Error()
		return nil
	}

	devices, err := a.GetConnectedDevices(ctx, reachableOnly)
	if err := record("devices", err); err != nil {
		return nil, err
	}
	snap.Devices = devices

	rates, err := a.GetCurrentTransferRates(ctx)
	if err := record("rates", err); err != nil {
		return nil, err
	}
	snap.Rates = rates

	temps, err := a.GetTemperatures(ctx)
	if err := record("temperatures", err); err != nil {
		return nil, err
	}
	snap.Temperatures = temps

	load, err := a.GetLoadAverage(ctx)
	if err := record("load", err); err != nil {
		return nil, err
	}
	snap.Load = load

	mem, err := a.GetMemInfo(ctx)
	if err := record("memory", err); err != nil {
		return nil, err
	}
	if _, failed := snap.Errors["memory"]; !failed {
		snap.Memory = &mem
	}

	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}
	return snap, nil
}
