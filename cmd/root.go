// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/observability"
)

var (
	cfgFile string

	// cfg is the resolved application configuration, populated by the
	// root command's PersistentPreRunE before any subcommand runs.
	cfg *config.Config

	// pretty controls JSON indentation on stdout.
	pretty bool
)

// NewRootCommand builds the root command and attaches every subcommand.
// A fresh instance per invocation keeps flag state from leaking between
// test runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cdpctl",
		Short:         "cdpctl controls a running browser over the DevTools protocol",
		Long:          "cdpctl discovers inspectable targets of a browser started with --remote-debugging-port,\nissues commands (navigate, evaluate, capture artifacts), and observes page lifecycle,\nconsole, and network events.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(cmd); err != nil {
				return err
			}

			var loaded config.Config
			if err := viper.Unmarshal(&loaded); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "cdpctl"})
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			cfg = &loaded

			observability.InitializeLogger(cfg.Logger)
			pretty = viper.GetBool("pretty")
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml, then ~/.cdpctl/config.yaml)")
	flags.String("host", "127.0.0.1", "remote-debugging host")
	flags.Int("port", 9222, "remote-debugging port")
	flags.Duration("timeout", 0, "default command timeout (overrides config when set)")
	flags.Bool("pretty", true, "pretty-print JSON output")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newListTabsCmd(),
		newBrowserInfoCmd(),
		newNewTabCmd(),
		newCloseTabCmd(),
		newActivateTabCmd(),
		newNavigateCmd(),
		newGetDOMCmd(),
		newGetHTMLCmd(),
		newGetDOMSnapshotCmd(),
		newEvalCmd(),
		newScreenshotCmd(),
		newPrintPDFCmd(),
		newConsoleLogCmd(),
		newNetworkLogCmd(),
		newListCookiesCmd(),
	)
	return rootCmd
}

// Execute runs the root command with the given (signal-aware) context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// initializeConfig wires defaults, the optional config file, environment
// variables, and flag overrides into viper, in ascending precedence.
func initializeConfig(cmd *cobra.Command) error {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".cdpctl"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CDPCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults, env vars, and flags carry it.
	}

	// Flags override file and environment values.
	if err := viper.BindPFlag("browser.host", cmd.Flags().Lookup("host")); err != nil {
		return err
	}
	if err := viper.BindPFlag("browser.port", cmd.Flags().Lookup("port")); err != nil {
		return err
	}
	if err := viper.BindPFlag("pretty", cmd.Flags().Lookup("pretty")); err != nil {
		return err
	}
	if timeoutFlag := cmd.Flags().Lookup("timeout"); timeoutFlag != nil && timeoutFlag.Changed {
		if err := viper.BindPFlag("client.command_timeout", timeoutFlag); err != nil {
			return err
		}
	}
	return nil
}
