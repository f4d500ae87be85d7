package doctor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/asuswrt/internal/util"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// Router is the part of *asuswrt.AsusWrt the router checks use.
type Router interface {
	Description() string
	Settings() asuswrt.Settings
	GetLoadAverage(ctx context.Context) (asuswrt.LoadAverage, error)
	GetNVRAMKeys(ctx context.Context, keys ...string) (map[string]string, error)
	GetInterfacesCounters(ctx context.Context) (map[string]asuswrt.InterfaceCounters, error)
	GetConnectedDevices(ctx context.Context, reachableOnly bool) (map[string]asuswrt.Device, error)
	GetTemperatures(ctx context.Context) (map[string]float64, error)
}

// NewRouterChecks returns the checks run against a live router. The
// connection check comes first and gates the rest.
func NewRouterChecks(r Router) []Check {
	return []Check{
		&ConnectCheck{Router: r},
		&FirmwareCheck{Router: r},
		&InterfaceCheck{Router: r},
		&DevicesCheck{Router: r},
		&TemperatureCheck{Router: r},
	}
}

// ConnectCheck logs in and reads /proc/loadavg.
type ConnectCheck struct {
	Router Router
}

func (c *ConnectCheck) Name() string     { return "connect" }
func (c *ConnectCheck) Category() string { return "ROUTER" }
func (c *ConnectCheck) Gates() bool      { return true }

func (c *ConnectCheck) Run(ctx context.Context) CheckResult {
	load, err := c.Router.GetLoadAverage(ctx)
	if err != nil {
		return failFromError(err)
	}
	return pass(fmt.Sprintf("Connected to %s (load %.2f)", c.Router.Description(), load[0]))
}

// FirmwareCheck reads the model and firmware version from NVRAM, which also
// proves the nvram applet works.
type FirmwareCheck struct {
	Router Router
}

func (c *FirmwareCheck) Name() string     { return "nvram" }
func (c *FirmwareCheck) Category() string { return "ROUTER" }

func (c *FirmwareCheck) Run(ctx context.Context) CheckResult {
	values, err := c.Router.GetNVRAMKeys(ctx, "productid", "firmver", "buildno")
	if err != nil {
		msg, _ := describe(err)
		return warn("NVRAM unavailable: "+msg, "The nvram and vpn commands won't work on this router")
	}
	model := values["productid"]
	if model == "" {
		model = "unknown model"
	}
	version := strings.Trim(values["firmver"]+"."+values["buildno"], ".")
	if version == "" {
		return pass(model)
	}
	return pass(model + " firmware " + version)
}

// InterfaceCheck verifies the configured WAN interface exists, since the
// transfer counters come from it.
type InterfaceCheck struct {
	Router Router
}

func (c *InterfaceCheck) Name() string     { return "wan_interface" }
func (c *InterfaceCheck) Category() string { return "ROUTER" }

func (c *InterfaceCheck) Run(ctx context.Context) CheckResult {
	counters, err := c.Router.GetInterfacesCounters(ctx)
	if err != nil {
		return failFromError(err)
	}

	wan := c.Router.Settings().WANInterface
	cur, ok := counters[wan]
	if !ok {
		names := make([]string, 0, len(counters))
		for name := range counters {
			names = append(names, name)
		}
		sort.Strings(names)
		return fail(fmt.Sprintf("WAN interface %s not found", wan),
			"Set wan_interface to one of: "+strings.Join(names, ", "))
	}
	return pass(fmt.Sprintf("WAN interface %s (%s down, %s up)",
		wan, humanize.Bytes(cur.RxBytes), humanize.Bytes(cur.TxBytes)))
}

// DevicesCheck runs the device sources and counts what they find.
type DevicesCheck struct {
	Router Router
}

func (c *DevicesCheck) Name() string     { return "devices" }
func (c *DevicesCheck) Category() string { return "ROUTER" }

func (c *DevicesCheck) Run(ctx context.Context) CheckResult {
	devices, err := c.Router.GetConnectedDevices(ctx, false)
	if err != nil {
		return failFromError(err)
	}
	if len(devices) == 0 {
		return warn("No devices found",
			"Check the dnsmasq directory ("+c.Router.Settings().Dnsmasq+") and the router mode")
	}
	return pass(util.Count(len(devices), "device", "devices") + " found")
}

// TemperatureCheck probes the thermal sensors.
type TemperatureCheck struct {
	Router Router
}

func (c *TemperatureCheck) Name() string     { return "temperatures" }
func (c *TemperatureCheck) Category() string { return "ROUTER" }

func (c *TemperatureCheck) Run(ctx context.Context) CheckResult {
	temps, err := c.Router.GetTemperatures(ctx)
	if err != nil {
		msg, _ := describe(err)
		return warn("Temperature probes failed: "+msg, "")
	}
	if len(temps) == 0 {
		return warn("No temperature sensors answered", "")
	}

	names := make([]string, 0, len(temps))
	for name := range temps {
		names = append(names, name)
	}
	sort.Strings(names)
	return pass("Sensors: " + strings.Join(names, ", "))
}
