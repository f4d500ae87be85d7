package asuswrt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/asuswrt/internal/commands"
	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/pkg/connection"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeRouter},
		{in: "router", want: ModeRouter},
		{in: " AP ", want: ModeAP},
		{in: "mesh", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.True(t, errors.IsCode(err, errors.ErrConfig), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNew_Defaults(t *testing.T) {
	router, _, _ := newTestRouter(t, Settings{RequireIP: true, RateInterval: time.Minute})

	assert.Equal(t, Settings{
		RequireIP:     true,
		Mode:          ModeRouter,
		Dnsmasq:       commands.DefaultDnsmasqDir,
		WANInterface:  "eth0",
		VLANInterface: "vlan1",
		RateInterval:  time.Minute,
	}, router.Settings())
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New("192.168.1.1", connection.AuthConfig{}, Settings{Mode: "bridge"})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestNew_BuildsConnection(t *testing.T) {
	router, err := New("192.168.1.1", connection.AuthConfig{
		Username: "admin",
		Password: "secret",
		Kind:     connection.KindTelnet,
	}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, "admin@192.168.1.1:110", router.Description())
	assert.False(t, router.IsConnected())

	_, err = New("", connection.AuthConfig{Username: "admin"}, Settings{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestConnectionLifecycle(t *testing.T) {
	router, fake, _ := newTestRouter(t, Settings{})
	fake.SetOutput(commands.LoadAvg, "0.25 0.10 0.05 1/120 3456")

	assert.False(t, router.IsConnected())
	_, err := router.GetLoadAverage(context.Background())
	require.NoError(t, err)
	assert.True(t, router.IsConnected())

	require.NoError(t, router.Disconnect())
	assert.False(t, router.IsConnected())

	_, err = router.GetLoadAverage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Connects())
}
