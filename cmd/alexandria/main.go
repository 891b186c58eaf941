package main

import (
	"os"
	"path/filepath"

	cmd "github.com/sophiatx/alexandria/cmd/alexandria/commands"
	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/libs/cli"
	nm "github.com/sophiatx/alexandria/node"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.GenKeyPairCmd,
		cmd.SuggestBrainKeyCmd,
		cmd.BrainKeyCmd,
		cmd.ShowPublicKeyCmd,
		cmd.DigestCmd,
		cmd.SignCmd,
		cmd.VerifyCmd,
		cmd.AddSignatureCmd,
		cmd.EncryptMemoCmd,
		cmd.DecryptMemoCmd,
		cmd.Base58Cmd,
		cmd.KeysCmd,
		cmd.StatusCmd,
		cmd.VersionCmd,
	)

	// Users wishing to supply their own metrics provider can copy this file
	// and use something other than the DefaultNewNode function.
	nodeFunc := nm.DefaultNewNode

	rootCmd.AddCommand(cmd.NewRunNodeCmd(nodeFunc))

	cmd := cli.PrepareBaseCmd(rootCmd, "ALEX", os.ExpandEnv(filepath.Join("$HOME", cfg.DefaultAlexandriaDir)))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
