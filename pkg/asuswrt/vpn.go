package asuswrt

import (
	"context"
	"fmt"
	"sort"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/parsers"
)

// VPNState is the derived state of a VPN client slot.
type VPNState string

const (
	VPNOff      VPNState = "off"
	VPNStarting VPNState = "starting"
	VPNOn       VPNState = "on"
)

// NVRAM vpn_client<N>_state values.
const (
	vpnFlagStarting = "1"
	vpnFlagRunning  = "2"
)

// VPNClient is one configured OpenVPN client. The stored password is never
// returned.
type VPNClient struct {
	ID          int      `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Type        string   `json:"type" yaml:"type"`
	Username    string   `json:"username,omitempty" yaml:"username,omitempty"`
	State       VPNState `json:"state" yaml:"state"`
}

// vpnState combines the process probe with the persisted state flag.
func vpnState(running bool, flag string) VPNState {
	switch {
	case running && flag == vpnFlagRunning:
		return VPNOn
	case running || flag == vpnFlagStarting:
		return VPNStarting
	default:
		return VPNOff
	}
}

// GetVPNClients lists the configured VPN clients with their state, ordered by
// slot. It returns nil when no client is configured.
func (a *AsusWrt) GetVPNClients(ctx context.Context) ([]VPNClient, error) {
	keys, _ := commands.NVRAMGroup("VPN")
	values, err := a.GetNVRAMKeys(ctx, keys...)
	if err != nil {
		return nil, err
	}
	list := values[commands.VPNClientList]
	if list == "" {
		return nil, nil
	}

	var clients []VPNClient
	for _, entry := range parsers.ParseVPNList(list, a.log) {
		if err := validVPNID(entry.ID); err != nil {
			a.log.Debug("skipping vpn client %q with id %d", entry.Description, entry.ID)
			continue
		}
		running, err := a.IsProcessRunning(ctx, commands.VPNProcess(entry.ID))
		if err != nil {
			return nil, err
		}
		clients = append(clients, VPNClient{
			ID:          entry.ID,
			Description: entry.Description,
			Type:        entry.Type,
			Username:    entry.Username,
			State:       vpnState(running, values[commands.VPNStateKey(entry.ID)]),
		})
	}

	sort.SliceStable(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

// StartVPNClient starts the client in slot id (1-5).
func (a *AsusWrt) StartVPNClient(ctx context.Context, id int) error {
	if err := validVPNID(id); err != nil {
		return err
	}
	_, err := a.conn.RunCommand(ctx, commands.VPNStart(id))
	return err
}

// StopVPNClient stops the client in slot id (1-5).
func (a *AsusWrt) StopVPNClient(ctx context.Context, id int) error {
	if err := validVPNID(id); err != nil {
		return err
	}
	_, err := a.conn.RunCommand(ctx, commands.VPNStop(id))
	return err
}

func validVPNID(id int) error {
	if id < 1 || id > commands.VPNCount {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("VPN client id %d is out of range", id),
			fmt.Sprintf("Use a slot between 1 and %d", commands.VPNCount))
	}
	return nil
}
