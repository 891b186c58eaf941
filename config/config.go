package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sophiatx/alexandria/crypto/secp256k1"
	"github.com/sophiatx/alexandria/types"
)

const (
	// LogFormatPlain is a format for colored text.
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output.
	LogFormatJSON = "json"

	// DefaultLogLevel defines a default log level as INFO.
	DefaultLogLevel = "info"

	// DefaultAlexandriaDir is the home directory, relative to $HOME.
	DefaultAlexandriaDir = ".alexandria"

	DefaultConfigDir   = "config"
	DefaultDataDir     = "data"
	DefaultKeystoreDir = "keys"

	DefaultConfigFileName = "config.toml"

	// DefaultChainID is the all-zero chain id used by test networks.
	DefaultChainID = "0000000000000000000000000000000000000000000000000000000000000000"
)

var (
	defaultConfigFilePath = filepath.Join(DefaultConfigDir, DefaultConfigFileName)

	prefixRegexp = regexp.MustCompile(`^[A-Z]{1,8}$`)
)

// Config defines the top level configuration for an alexandria node.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for services
	Chain           *ChainConfig           `mapstructure:"chain"`
	RPC             *RPCConfig             `mapstructure:"rpc"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration for an alexandria node.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Chain:           DefaultChainConfig(),
		RPC:             DefaultRPCConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing.
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Chain:           TestChainConfig(),
		RPC:             TestRPCConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs.
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	cfg.RPC.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Chain.ValidateBasic(); err != nil {
		return ErrInSection{Section: "chain", Err: err}
	}
	if err := cfg.RPC.ValidateBasic(); err != nil {
		return ErrInSection{Section: "rpc", Err: err}
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return ErrInSection{Section: "instrumentation", Err: err}
	}
	return nil
}

// -----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for an alexandria node.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	// Directory holding the passphrase-protected key files
	Keystore string `mapstructure:"keystore_dir"`
}

// DefaultBaseConfig returns a default base configuration for an alexandria node.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: LogFormatPlain,
		Keystore:  DefaultKeystoreDir,
	}
}

// TestBaseConfig returns a base configuration for testing an alexandria node.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.LogLevel = "debug"
	return cfg
}

// KeystoreDir returns the full path to the keystore directory.
func (cfg BaseConfig) KeystoreDir() string {
	return rootify(cfg.Keystore, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return ErrUnknownLogFormat
	}
	if cfg.Keystore == "" {
		return ErrEmptyKeystoreDir
	}
	return nil
}

// -----------------------------------------------------------------------------
// ChainConfig

// ChainConfig defines the chain the node signs for.
type ChainConfig struct {
	// Hex encoded 32 byte chain id mixed into every transaction digest
	ChainID string `mapstructure:"chain_id"`

	// Prefix of public key strings
	AddressPrefix string `mapstructure:"address_prefix"`

	// Emit WIF strings with the compressed-key suffix
	CompressedWif bool `mapstructure:"compressed_wif"`
}

// DefaultChainConfig returns a default configuration for the chain section.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		ChainID:       DefaultChainID,
		AddressPrefix: secp256k1.DefaultPubKeyPrefix,
		CompressedWif: false,
	}
}

// TestChainConfig returns a configuration for testing the chain section.
func TestChainConfig() *ChainConfig {
	return DefaultChainConfig()
}

// ParsedChainID returns the decoded chain id.
func (cfg *ChainConfig) ParsedChainID() (types.ChainID, error) {
	return types.ParseChainID(cfg.ChainID)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ChainConfig) ValidateBasic() error {
	if _, err := cfg.ParsedChainID(); err != nil {
		return fmt.Errorf("chain_id: %w", err)
	}
	if !prefixRegexp.MatchString(cfg.AddressPrefix) {
		return ErrInvalidAddressPrefix
	}
	return nil
}

// -----------------------------------------------------------------------------
// RPCConfig

// RPCConfig defines the configuration options for the JSON-RPC server.
type RPCConfig struct {
	RootDir string `mapstructure:"home"`

	// TCP or UNIX socket address for the RPC server to listen on
	ListenAddress string `mapstructure:"laddr"`

	// A list of origins a cross-domain request can be executed from.
	// If the special '*' value is present in the list, all origins will be allowed.
	// An origin may contain a wildcard (*) to replace 0 or more characters (i.e.: http://*.domain.com).
	// Only one wildcard can be used per origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// A list of methods the client is allowed to use with cross-domain requests.
	CORSAllowedMethods []string `mapstructure:"cors_allowed_methods"`

	// A list of non simple headers the client is allowed to use with cross-domain requests.
	CORSAllowedHeaders []string `mapstructure:"cors_allowed_headers"`

	// Maximum number of simultaneous connections (including WebSocket).
	// 0 - unlimited.
	MaxOpenConnections int `mapstructure:"max_open_connections"`

	// Maximum size of request body, in bytes
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// Maximum size of request header, in bytes
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`

	// Maximum number of requests in a batch request. 0 - unlimited.
	MaxRequestBatchSize int `mapstructure:"max_request_batch_size"`

	// How long to wait for a request to be read, and for its response to be written.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// The path to a file containing certificate that is used to create the HTTPS server.
	// Might be either absolute path or path related to the config directory.
	TLSCertFile string `mapstructure:"tls_cert_file"`

	// The path to a file containing matching private key that is used to create the HTTPS server.
	TLSKeyFile string `mapstructure:"tls_key_file"`
}

// DefaultRPCConfig returns a default configuration for the RPC server.
func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		ListenAddress:       "tcp://127.0.0.1:8095",
		CORSAllowedOrigins:  []string{},
		CORSAllowedMethods:  []string{"HEAD", "GET", "POST"},
		CORSAllowedHeaders:  []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "X-Server-Time"},
		MaxOpenConnections:  900,
		MaxBodyBytes:        int64(1000000), // 1MB
		MaxHeaderBytes:      1 << 20,        // same as the net/http default
		MaxRequestBatchSize: 10,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
	}
}

// TestRPCConfig returns a configuration for testing the RPC server.
func TestRPCConfig() *RPCConfig {
	cfg := DefaultRPCConfig()
	cfg.ListenAddress = "tcp://127.0.0.1:0"
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *RPCConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return errors.New("max_open_connections can't be negative")
	}
	if cfg.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes can't be negative")
	}
	if cfg.MaxHeaderBytes < 0 {
		return errors.New("max_header_bytes can't be negative")
	}
	if cfg.MaxRequestBatchSize < 0 {
		return errors.New("max_request_batch_size can't be negative")
	}
	if cfg.ReadTimeout < 0 {
		return errors.New("read_timeout can't be negative")
	}
	if cfg.WriteTimeout < 0 {
		return errors.New("write_timeout can't be negative")
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return ErrIncompleteTLS
	}
	return nil
}

// IsCorsEnabled returns true if cross-origin resource sharing is enabled.
func (cfg *RPCConfig) IsCorsEnabled() bool {
	return len(cfg.CORSAllowedOrigins) != 0
}

func (cfg RPCConfig) KeyFile() string {
	path := cfg.TLSKeyFile
	if filepath.IsAbs(path) {
		return path
	}
	return rootify(filepath.Join(DefaultConfigDir, path), cfg.RootDir)
}

func (cfg RPCConfig) CertFile() string {
	path := cfg.TLSCertFile
	if filepath.IsAbs(path) {
		return path
	}
	return rootify(filepath.Join(DefaultConfigDir, path), cfg.RootDir)
}

func (cfg RPCConfig) IsTLSEnabled() bool {
	return cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
}

// -----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	Prometheus bool `mapstructure:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus_listen_addr"`

	// Maximum number of simultaneous connections.
	// 0 - unlimited.
	MaxOpenConnections int `mapstructure:"max_open_connections"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		MaxOpenConnections:   3,
		Namespace:            "alexandria",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return errors.New("max_open_connections can't be negative")
	}
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus_listen_addr is required when prometheus is enabled")
	}
	return nil
}

// IsPrometheusEnabled returns true if the prometheus listen address is set.
func (cfg *InstrumentationConfig) IsPrometheusEnabled() bool {
	return cfg.Prometheus && cfg.PrometheusListenAddr != ""
}

// -----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir.
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
