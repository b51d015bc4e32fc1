// Package cli implements the pagemcp command line.
package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mwiater/pagemcp/internal/appconfig"
	"github.com/mwiater/pagemcp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	buildVersion  = "dev"
)

// persistentKeys maps root flags onto config keys.
var persistentKeys = map[string]string{
	"debug":           "debug",
	"logFile":         "logFile",
	"strictArguments": "strictArguments",
}

// binding ties a command-local flag to a config key.
type binding struct {
	flag, key string
}

// localBindings lists per-command flags that override config values.
var localBindings = map[string][]binding{
	"serve": {{flag: "host", key: "server.host"}, {flag: "port", key: "server.port"}},
}

var rootCmd = &cobra.Command{
	Use:          "pagemcp",
	Short:        "pagemcp: Facebook Page tools over MCP and HTTP",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// flags > environment > config file > defaults
		v := viper.New()
		for flag, key := range persistentKeys {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return errors.Wrapf(err, "bind flag %q", flag)
			}
		}
		for _, b := range localBindings[cmd.Name()] {
			if err := v.BindPFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
				return errors.Wrapf(err, "bind flag %q", b.flag)
			}
		}

		cfg, err := appconfig.Load(v, cfgFile)
		if err != nil {
			return err
		}
		currentConfig = &cfg

		return logging.Init(cfg.LogFile, cfg.Debug)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

// SetVersionInfo records the build version shown by --version.
func SetVersionInfo(version string) {
	if version == "" {
		return
	}
	buildVersion = version
	rootCmd.Version = version
}

func init() {
	rootCmd.Version = buildVersion
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (json, yaml or toml); searches ./pagemcp.* and ./config/pagemcp.* when empty")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "append logs to this file in addition to stderr")
	rootCmd.PersistentFlags().Bool("strictArguments", false, "validate tool arguments against their declared schema")
}

// getConfig returns the configuration loaded for the running command.
func getConfig() appconfig.Config {
	if currentConfig == nil {
		return appconfig.Config{}
	}
	return *currentConfig
}
