package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/libs/cli"
	alexflags "github.com/sophiatx/alexandria/libs/cli/flags"
	"github.com/sophiatx/alexandria/libs/log"
)

// Logs go to stderr so command output on stdout stays machine readable.
var (
	config = cfg.DefaultConfig()
	logger = log.NewLogger(os.Stderr)
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log_level", config.LogLevel, "log level")
	cmd.PersistentFlags().String("log_format", config.LogFormat, "log format (plain|json)")
}

func ConfigHome(cmd *cobra.Command) (string, error) {
	if home := os.Getenv("ALEXHOME"); home != "" {
		return home, nil
	}
	// Default: $HOME/.alexandria
	return cmd.Flags().GetString(cli.HomeFlag)
}

// ParseConfig retrieves the default environment configuration,
// sets up the Alexandria root and ensures that the root exists.
func ParseConfig(cmd *cobra.Command) (*cfg.Config, error) {
	conf := cfg.DefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	home, err := ConfigHome(cmd)
	if err != nil {
		return nil, err
	}
	conf.SetRoot(home)

	if err := cfg.EnsureRoot(conf.RootDir); err != nil {
		return nil, err
	}
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCmd is the root command for Alexandria.
var RootCmd = &cobra.Command{
	Use:   "alexandria",
	Short: "SophiaTX key management and transaction signing",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
		if cmd.Name() == VersionCmd.Name() {
			return nil
		}

		config, err = ParseConfig(cmd)
		if err != nil {
			return err
		}

		if config.LogFormat == cfg.LogFormatJSON {
			logger = log.NewJSONLogger(os.Stderr)
		} else {
			logger = log.NewLogger(os.Stderr)
		}

		logger, err = alexflags.ParseLogLevel(config.LogLevel, logger, cfg.DefaultLogLevel)
		return err
	},
}
