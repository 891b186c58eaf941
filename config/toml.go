package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	_ "embed"

	alexos "github.com/sophiatx/alexandria/libs/os"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root, config, data and keystore directories if they
// don't exist. The config file itself is written by `alexandria init`.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, DefaultConfigDir),
		filepath.Join(rootDir, DefaultDataDir),
		filepath.Join(rootDir, DefaultKeystoreDir),
	} {
		if err := alexos.EnsureDir(dir, DefaultDirPerm); err != nil {
			return err
		}
	}
	return nil
}

// WriteConfigFile renders config using the template and writes it to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, config); err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	return alexos.WriteFileAtomic(configFilePath, buffer.Bytes(), 0o644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go.
//
//go:embed config.toml.tpl
var defaultConfigTemplate string

// ResetTestRoot creates a fresh root directory with a test config file and
// returns the matching config. Callers remove cfg.RootDir when done.
func ResetTestRoot(testName string) (*Config, error) {
	rootDir, err := os.MkdirTemp("", testName)
	if err != nil {
		return nil, err
	}

	cfg := TestConfig().SetRoot(rootDir)
	if err := EnsureRoot(rootDir); err != nil {
		return nil, err
	}
	if err := WriteConfigFile(filepath.Join(rootDir, defaultConfigFilePath), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
