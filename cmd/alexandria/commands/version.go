package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sophiatx/alexandria/version"
)

var verbose bool

// VersionCmd prints the version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		}

		values, err := json.MarshalIndent(struct {
			Alexandria string `json:"alexandria"`
			RPC        string `json:"rpc"`
		}{
			Alexandria: version.String(),
			RPC:        version.RPCVersion,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the RPC protocol version too")
}
