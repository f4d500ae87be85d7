package asuswrt

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/parsers"
)

// GetNVRAM returns the values of a named key group such as "DHCP" or "WIFI_5G".
// Keys without a value are left out. It returns nil when the router printed
// nothing.
func (a *AsusWrt) GetNVRAM(ctx context.Context, group string) (map[string]string, error) {
	keys, ok := commands.NVRAMGroup(group)
	if !ok {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown NVRAM group '%s'", group),
			"Use one of: "+strings.Join(commands.NVRAMGroupNames(), ", "))
	}
	return a.GetNVRAMKeys(ctx, keys...)
}

// GetNVRAMKeys returns the values of arbitrary NVRAM keys.
func (a *AsusWrt) GetNVRAMKeys(ctx context.Context, keys ...string) (map[string]string, error) {
	lines, ok, err := a.run(ctx, commands.NVRAM)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return parsers.ParseNVRAM(lines, keys), nil
}
