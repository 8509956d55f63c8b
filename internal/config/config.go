// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig identifies the browser's remote-debugging endpoint.
type BrowserConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	// DiscoveryTimeout bounds the plain HTTP calls against the /json
	// discovery surface (list, new, close, activate, version).
	DiscoveryTimeout time.Duration `mapstructure:"discovery_timeout" yaml:"discovery_timeout"`
}

// ClientConfig tunes the protocol client that rides the debugging WebSocket.
type ClientConfig struct {
	// CommandTimeout is the default deadline applied to a single CDP
	// command when the caller does not supply one.
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`

	// WaitTimeout bounds lifecycle waits (dom/load/idle) as a whole.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`

	// NetworkIdleQuiet is the window with zero in-flight requests that
	// must elapse before a page counts as network-idle.
	NetworkIdleQuiet time.Duration `mapstructure:"network_idle_quiet" yaml:"network_idle_quiet"`

	// EventBufferSize caps each event subscriber's channel. When a
	// subscriber falls this far behind, the newest events are dropped
	// for that subscriber only.
	EventBufferSize int `mapstructure:"event_buffer_size" yaml:"event_buffer_size"`

	// HandshakeTimeout bounds the WebSocket dial + upgrade.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
}

// Endpoint returns the host:port base of the discovery surface.
func (b BrowserConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// SetDefaults registers every configuration default on the given viper
// instance. Keys mirror the mapstructure tags above.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cdpctl")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.host", "127.0.0.1")
	v.SetDefault("browser.port", 9222)
	v.SetDefault("browser.discovery_timeout", "10s")

	// -- Client --
	v.SetDefault("client.command_timeout", "10s")
	v.SetDefault("client.wait_timeout", "30s")
	v.SetDefault("client.network_idle_quiet", "500ms")
	v.SetDefault("client.event_buffer_size", 2048)
	v.SetDefault("client.handshake_timeout", "10s")
}

// NewDefaultConfig returns a Config populated purely from defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above; fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}
