package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	cfg "github.com/sophiatx/alexandria/config"
	alexos "github.com/sophiatx/alexandria/libs/os"
)

// InitFilesCmd initializes a fresh Alexandria home directory.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Alexandria",
	RunE:  initFiles,
}

func initFiles(*cobra.Command, []string) error {
	return initFilesWithConfig(config)
}

// initFilesWithConfig creates the directories of config's root and renders
// config into its config file. An existing config file is kept.
func initFilesWithConfig(config *cfg.Config) error {
	if err := cfg.EnsureRoot(config.RootDir); err != nil {
		return err
	}

	configFile := filepath.Join(config.RootDir, cfg.DefaultConfigDir, cfg.DefaultConfigFileName)
	if alexos.FileExists(configFile) {
		logger.Info("Found config file", "path", configFile)
	} else {
		if err := cfg.WriteConfigFile(configFile, config); err != nil {
			return err
		}
		logger.Info("Generated config file", "path", configFile)
	}

	if err := alexos.EnsureDir(config.KeystoreDir(), 0o700); err != nil {
		return err
	}
	logger.Info("Keystore directory", "path", config.KeystoreDir())
	return nil
}
