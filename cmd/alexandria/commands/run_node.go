package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	alexos "github.com/sophiatx/alexandria/libs/os"
	nm "github.com/sophiatx/alexandria/node"
)

// AddNodeFlags exposes some common configuration options on the command-line
// These are exposed for convenience of commands embedding an Alexandria node.
func AddNodeFlags(cmd *cobra.Command) {
	// chain flags
	cmd.Flags().String("chain.chain_id", config.Chain.ChainID, "hex encoded 32 byte chain id")
	cmd.Flags().String("chain.address_prefix", config.Chain.AddressPrefix, "public key string prefix")
	cmd.Flags().Bool("chain.compressed_wif", config.Chain.CompressedWif, "emit compressed WIF private keys")

	// rpc flags
	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC listen address. Port required")
	cmd.Flags().StringSlice("rpc.cors_allowed_origins", config.RPC.CORSAllowedOrigins, "origins allowed to make cross-domain requests")

	// instrumentation flags
	cmd.Flags().Bool("instrumentation.prometheus", config.Instrumentation.Prometheus, "serve Prometheus metrics")
	cmd.Flags().String("instrumentation.prometheus_listen_addr",
		config.Instrumentation.PrometheusListenAddr, "Prometheus listen address")
}

// NewRunNodeCmd returns the command that allows the CLI to start a node.
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"node", "run"},
		Short:   "Run the Alexandria signing service",
		RunE: func(_ *cobra.Command, _ []string) error {
			n, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if err := n.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}

			logger.Info("Started node", "listeners", n.Listeners())

			// Stop upon receiving SIGTERM or CTRL-C.
			alexos.TrapSignal(logger, func() {
				if n.IsListening() {
					if err := n.Stop(); err != nil {
						logger.Error("unable to stop the node", "error", err)
					}
				}
			})

			// Run forever.
			select {}
		},
	}

	AddNodeFlags(cmd)
	return cmd
}
