package commands

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/keystore"
	"github.com/sophiatx/alexandria/libs/cli"
	alexos "github.com/sophiatx/alexandria/libs/os"
)

func init() {
	keystoreOptions = []keystore.Option{keystore.WithScryptN(keystore.LightScryptN)}
}

// clearConfig clears env vars and resets viper.
func clearConfig(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ALEXHOME", "ALEX_HOME", "ALEX_LOG_LEVEL", "ALEX_CHAIN_ADDRESS_PREFIX"} {
		require.NoError(t, os.Unsetenv(k))
	}
	viper.Reset()
	config = cfg.DefaultConfig()
	fromFlag, chainIDFlag, nodeFlag = "", "", ""
}

// prepare new rootCmd
func testRootCmd(subcommands ...*cobra.Command) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               RootCmd.Use,
		PersistentPreRunE: RootCmd.PersistentPreRunE,
		Run:               func(*cobra.Command, []string) {},
	}
	registerFlagsRootCmd(rootCmd)
	var l string
	rootCmd.PersistentFlags().String("log", l, "Log")
	rootCmd.AddCommand(subcommands...)
	return rootCmd
}

func testSetup(t *testing.T, root string, args []string, env map[string]string) error {
	t.Helper()
	clearConfig(t)

	rootCmd := testRootCmd()
	cmd := cli.PrepareBaseCmd(rootCmd, "ALEX", root)
	cmd.Exit = func(int) {}

	// run with the args and env
	args = append([]string{rootCmd.Use}, args...)
	return cli.RunWithArgs(cmd, args, env)
}

func TestRootHome(t *testing.T) {
	root := t.TempDir()
	newRoot := t.TempDir()
	t.Cleanup(func() { clearConfig(t) })

	cases := []struct {
		args []string
		env  map[string]string
		root string
	}{
		{nil, nil, root},
		{[]string{"--home", newRoot}, nil, newRoot},
		{nil, map[string]string{"ALEXHOME": newRoot}, newRoot},
	}

	for i, tc := range cases {
		idxString := "idx: " + strconv.Itoa(i)

		err := testSetup(t, root, tc.args, tc.env)
		require.NoError(t, err, idxString)

		assert.Equal(t, tc.root, config.RootDir, idxString)
		assert.Equal(t, tc.root, config.RPC.RootDir, idxString)
		assert.Equal(t, filepath.Join(tc.root, cfg.DefaultKeystoreDir), config.KeystoreDir(), idxString)
		assert.DirExists(t, filepath.Join(tc.root, cfg.DefaultConfigDir), idxString)
	}
}

func TestRootFlagsEnv(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })

	// defaults
	defaults := cfg.DefaultConfig()
	defaultLogLvl := defaults.LogLevel

	cases := []struct {
		args     []string
		env      map[string]string
		logLevel string
	}{
		{[]string{"--log", "debug"}, nil, defaultLogLvl},                   // wrong flag
		{[]string{"--log_level", "debug"}, nil, "debug"},                   // right flag
		{nil, map[string]string{"ALEX_LOW": "debug"}, defaultLogLvl},       // wrong env flag
		{nil, map[string]string{"XELA_LOG_LEVEL": "debug"}, defaultLogLvl}, // wrong env prefix
		{nil, map[string]string{"ALEX_LOG_LEVEL": "debug"}, "debug"},       // right env
	}

	for i, tc := range cases {
		idxString := "idx: " + strconv.Itoa(i)
		err := testSetup(t, t.TempDir(), tc.args, tc.env)
		require.NoError(t, err, idxString)

		assert.Equal(t, tc.logLevel, config.LogLevel, idxString)
	}
}

func TestRootConfig(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })

	// write non-default config
	nonDefaultLogLvl := "engine:debug"
	cvals := map[string]string{
		"log_level": nonDefaultLogLvl,
	}

	cases := []struct {
		args []string
		env  map[string]string

		logLvl string
	}{
		{nil, nil, nonDefaultLogLvl},                                             // should load config
		{[]string{"--log_level=engine:info"}, nil, "engine:info"},                // flag over rides
		{nil, map[string]string{"ALEX_LOG_LEVEL": "engine:info"}, "engine:info"}, // env over rides
	}

	for i, tc := range cases {
		idxString := "idx: " + strconv.Itoa(i)
		root := t.TempDir()
		configFilePath := filepath.Join(root, cfg.DefaultConfigDir)
		require.NoError(t, alexos.EnsureDir(configFilePath, 0o700))

		// write the non-defaults to a different path
		require.NoError(t, cli.WriteConfigVals(configFilePath, cvals))

		err := testSetup(t, root, tc.args, tc.env)
		require.NoError(t, err, idxString)

		assert.Equal(t, tc.logLvl, config.LogLevel, idxString)
	}
}

func TestRootInvalidConfig(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })

	err := testSetup(t, t.TempDir(), []string{"--log_format", "xml"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cfg.ErrUnknownLogFormat)

	err = testSetup(t, t.TempDir(), []string{"--log_level", "engine:loud"}, nil)
	assert.Error(t, err)
}

func TestInitFiles(t *testing.T) {
	clearConfig(t)
	t.Cleanup(func() { clearConfig(t) })

	// a root that does not exist yet
	root := filepath.Join(t.TempDir(), "home")
	conf := cfg.TestConfig().SetRoot(root)
	conf.Chain.AddressPrefix = "TST"
	require.NoError(t, initFilesWithConfig(conf))

	configFile := filepath.Join(root, cfg.DefaultConfigDir, cfg.DefaultConfigFileName)
	var written struct {
		Chain struct {
			AddressPrefix string `toml:"address_prefix"`
		} `toml:"chain"`
	}
	_, err := toml.DecodeFile(configFile, &written)
	require.NoError(t, err)
	assert.Equal(t, "TST", written.Chain.AddressPrefix)

	fi, err := os.Stat(conf.KeystoreDir())
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// a second run keeps what is there
	conf.Chain.AddressPrefix = "OTHER"
	require.NoError(t, initFilesWithConfig(conf))
	_, err = toml.DecodeFile(configFile, &written)
	require.NoError(t, err)
	assert.Equal(t, "TST", written.Chain.AddressPrefix)
}

func TestInitCmd(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })
	home := t.TempDir()

	configFile := filepath.Join(home, cfg.DefaultConfigDir, cfg.DefaultConfigFileName)
	_, err := runCmd(t, home, "", "show-pubkey", wifOne)
	require.NoError(t, err)
	assert.NoFileExists(t, configFile)

	_, err = runCmd(t, home, "", "init")
	require.NoError(t, err)
	assert.FileExists(t, configFile)
}

func TestVersionCmd(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })
	clearConfig(t)

	rootCmd := testRootCmd(VersionCmd)
	cmd := cli.PrepareBaseCmd(rootCmd, "ALEX", t.TempDir())
	cmd.Exit = func(int) {}

	stdout, _, err := cli.RunCaptureWithArgs(cmd, []string{rootCmd.Use, "version"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(stdout))
}
