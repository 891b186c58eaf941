package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rpchttp "github.com/sophiatx/alexandria/rpc/client/http"
)

var nodeFlag string

// StatusCmd queries a running signing service.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running signing service",
	Long: `Show the status of a running signing service.

The service is reached at --node, or at the first rpc.laddr of the local
config when --node is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		remote := nodeFlag
		if remote == "" {
			remote = strings.TrimSpace(strings.Split(config.RPC.ListenAddress, ",")[0])
		}
		c, err := rpchttp.New(remote)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if _, err := c.Health(ctx); err != nil {
			return fmt.Errorf("%s is not healthy: %w", c.Remote(), err)
		}
		status, err := c.Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, status)
	},
}

func init() {
	StatusCmd.Flags().StringVar(&nodeFlag, "node", "", "RPC address of the signing service (tcp://host:port or unix://path)")
}
