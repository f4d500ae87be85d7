package asuswrt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
)

func TestVPNState(t *testing.T) {
	tests := []struct {
		running bool
		flag    string
		want    VPNState
	}{
		{running: true, flag: "2", want: VPNOn},
		{running: true, flag: "1", want: VPNStarting},
		{running: true, flag: "0", want: VPNStarting},
		{running: false, flag: "1", want: VPNStarting},
		{running: false, flag: "2", want: VPNOff},
		{running: false, flag: "", want: VPNOff},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, vpnState(tt.running, tt.flag), "running=%v flag=%q", tt.running, tt.flag)
	}
}

func TestGetVPNClients(t *testing.T) {
	router, fake, _ := newTestRouter(t, Settings{})
	fake.SetOutput(commands.NVRAM, nvramOutput)
	fake.SetOutput(commands.PidOf("vpnclient1"), "1234")
	fake.SetOutput(commands.PidOf("vpnclient2"), "")
	fake.SetOutput(commands.PidOf("vpnclient3"), "")

	clients, err := router.GetVPNClients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []VPNClient{
		{ID: 1, Description: "Mullvad", Type: "OpenVPN", Username: "user", State: VPNOn},
		{ID: 2, Description: "Home", Type: "PPTP", Username: "me", State: VPNOff},
		{ID: 3, Description: "Office", Type: "OpenVPN", State: VPNStarting},
	}, clients)
}

func TestGetVPNClients_NoneConfigured(t *testing.T) {
	router, fake, _ := newTestRouter(t, Settings{})
	fake.SetOutput(commands.NVRAM, "model=RT-AC88U\nvpnc_clientlist=")

	clients, err := router.GetVPNClients(context.Background())
	require.NoError(t, err)
	assert.Nil(t, clients)
	assert.Equal(t, []string{commands.NVRAM}, fake.Calls())
}

func TestGetVPNClients_SkipsOutOfRangeSlots(t *testing.T) {
	router, fake, log := newTestRouter(t, Settings{})
	fake.SetOutput(commands.NVRAM, "vpnc_clientlist=Old>OpenVPN>9>u>p<Mullvad>OpenVPN>1>user>secret")
	fake.SetOutput(commands.PidOf("vpnclient1"), "")

	clients, err := router.GetVPNClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, 1, clients[0].ID)
	assert.Equal(t, VPNOff, clients[0].State)
	assert.True(t, log.Contains("debug", `"Old"`))
	assert.Zero(t, fake.CallCount(commands.PidOf("vpnclient9")))
}

func TestGetVPNClients_ProbeFailure(t *testing.T) {
	router, fake, _ := newTestRouter(t, Settings{})
	fake.SetOutput(commands.NVRAM, nvramOutput)
	fake.SetError(commands.PidOf("vpnclient1"), errors.New(errors.ErrTimeout, "Command timed out", ""))

	_, err := router.GetVPNClients(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrTimeout))
}

func TestStartStopVPNClient(t *testing.T) {
	router, fake, _ := newTestRouter(t, Settings{})
	fake.SetOutput(`^service (start|stop)_vpnclient\d$`, "Done.")
	ctx := context.Background()

	require.NoError(t, router.StartVPNClient(ctx, 2))
	require.NoError(t, router.StopVPNClient(ctx, 5))
	assert.Equal(t, []string{"service start_vpnclient2", "service stop_vpnclient5"}, fake.Calls())

	for _, id := range []int{0, 6, -1} {
		err := router.StartVPNClient(ctx, id)
		assert.True(t, errors.IsCode(err, errors.ErrConfig), "start %d", id)
		err = router.StopVPNClient(ctx, id)
		assert.True(t, errors.IsCode(err, errors.ErrConfig), "stop %d", id)
	}
	assert.Len(t, fake.Calls(), 2)
}
