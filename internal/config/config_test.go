// File: internal/config/config_test.go
package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cdpctl/internal/config"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "cdpctl", cfg.Logger.ServiceName)

	assert.Equal(t, "127.0.0.1", cfg.Browser.Host)
	assert.Equal(t, 9222, cfg.Browser.Port)
	assert.Equal(t, 10*time.Second, cfg.Browser.DiscoveryTimeout)

	assert.Equal(t, 10*time.Second, cfg.Client.CommandTimeout)
	assert.Equal(t, 30*time.Second, cfg.Client.WaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.NetworkIdleQuiet)
	assert.Equal(t, 2048, cfg.Client.EventBufferSize)
	assert.Equal(t, 10*time.Second, cfg.Client.HandshakeTimeout)
}

func TestEndpoint(t *testing.T) {
	b := config.BrowserConfig{Host: "10.1.2.3", Port: 9333}
	assert.Equal(t, "10.1.2.3:9333", b.Endpoint())
}

func TestOverridesBeatDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("browser.port", 9444)
	v.Set("client.network_idle_quiet", "750ms")

	var cfg config.Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 9444, cfg.Browser.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Client.NetworkIdleQuiet)
	// Untouched keys keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Browser.Host)
}
