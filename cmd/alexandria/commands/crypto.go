package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sophiatx/alexandria/engine"
	rpccore "github.com/sophiatx/alexandria/rpc/core"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// Offline commands run the same handlers as the RPC server, against an
// engine built from the local config.

var (
	chainIDFlag string
	fromFlag    string
)

func newEnvironment() (*rpccore.Environment, error) {
	chainID, err := config.Chain.ParsedChainID()
	if err != nil {
		return nil, err
	}
	e := engine.New(
		engine.WithLogger(logger.With("module", "engine")),
		engine.WithPubKeyPrefix(config.Chain.AddressPrefix),
		engine.WithCompressedWif(config.Chain.CompressedWif),
	)
	if err := e.Init(); err != nil {
		return nil, err
	}
	return &rpccore.Environment{
		Engine:  e,
		ChainID: chainID,
		Logger:  logger.With("module", "cli"),
		Metrics: rpccore.NopMetrics(),
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return nil
}

// runWithEnv adapts an RPC handler call to a cobra RunE.
func runWithEnv(call func(cmd *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment()
		if err != nil {
			return err
		}
		res, err := call(cmd, env, &rpctypes.Context{}, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	}
}

// privateKeyArg returns the WIF key given as args[i], or the key named by
// --from, unlocked with a passphrase read from the command input.
func privateKeyArg(cmd *cobra.Command, env *rpccore.Environment, args []string, i int) (string, error) {
	if fromFlag == "" {
		if len(args) <= i {
			return "", fmt.Errorf("expected a WIF private key argument or --from")
		}
		return args[i], nil
	}
	if len(args) > i {
		return "", fmt.Errorf("a WIF private key argument and --from are mutually exclusive")
	}
	return keystoreWif(cmd, env, fromFlag)
}

// keystoreWif unlocks the keystore key name and returns it as WIF.
func keystoreWif(cmd *cobra.Command, env *rpccore.Environment, name string) (string, error) {
	ks, err := openKeystore()
	if err != nil {
		return "", err
	}
	passphrase, err := readPassphrase(cmd, fmt.Sprintf("Passphrase for %s: ", name), false)
	if err != nil {
		return "", err
	}
	privKey, err := ks.Load(name, passphrase)
	if err != nil {
		return "", err
	}
	defer privKey.Zero()
	return env.Engine.PrivateKeyToWif(privKey)
}

// GenKeyPairCmd generates a random key pair.
var GenKeyPairCmd = &cobra.Command{
	Use:   "gen-key",
	Short: "Generate a random key pair",
	Args:  cobra.NoArgs,
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, _ []string) (any, error) {
		return env.GenerateKeyPair(ctx)
	}),
}

// SuggestBrainKeyCmd draws a new brain key.
var SuggestBrainKeyCmd = &cobra.Command{
	Use:   "suggest-brain-key",
	Short: "Suggest a new brain key and show the key pair it derives",
	Args:  cobra.NoArgs,
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, _ []string) (any, error) {
		return env.SuggestBrainKey(ctx)
	}),
}

// BrainKeyCmd derives the key pair of a brain key.
var BrainKeyCmd = &cobra.Command{
	Use:   "brain-key [words...]",
	Short: "Derive the key pair of a brain key",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.GenerateKeyPairFromBrainKey(ctx, strings.Join(args, " "))
	}),
}

// ShowPublicKeyCmd prints the public key of a private key.
var ShowPublicKeyCmd = &cobra.Command{
	Use:   "show-pubkey [wif]",
	Short: "Show the public key of a WIF private key",
	Args:  cobra.ExactArgs(1),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.GetPublicKey(ctx, args[0])
	}),
}

// DigestCmd prints the digest to sign for a serialized transaction.
var DigestCmd = &cobra.Command{
	Use:   "digest [transaction-hex]",
	Short: "Compute the signing digest of a serialized transaction",
	Args:  cobra.ExactArgs(1),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.GetTransactionDigest(ctx, args[0], chainIDFlag)
	}),
}

// SignCmd signs a digest.
var SignCmd = &cobra.Command{
	Use:   "sign [digest] [wif]",
	Short: "Sign a 32 byte digest",
	Long: `Sign a 32 byte digest with a WIF private key, or with a keystore key
named by --from. The passphrase of a keystore key is read from the terminal,
or from the first line of standard input.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWithEnv(func(cmd *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		wifKey, err := privateKeyArg(cmd, env, args, 1)
		if err != nil {
			return nil, err
		}
		return env.SignDigest(ctx, args[0], wifKey)
	}),
}

// VerifyCmd checks a signature.
var VerifyCmd = &cobra.Command{
	Use:   "verify [digest] [public-key] [signature]",
	Short: "Verify a signature of a digest",
	Args:  cobra.ExactArgs(3),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.VerifySignature(ctx, args[0], args[1], args[2])
	}),
}

// AddSignatureCmd appends a signature to a JSON transaction.
var AddSignatureCmd = &cobra.Command{
	Use:   "add-signature [transaction-json] [signature]",
	Short: "Append a signature to the signatures of a JSON transaction",
	Args:  cobra.ExactArgs(2),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.AddSignature(ctx, json.RawMessage(args[0]), args[1])
	}),
}

// EncryptMemoCmd encrypts a memo.
var EncryptMemoCmd = &cobra.Command{
	Use:   "encrypt-memo [memo] [public-key] [wif]",
	Short: "Encrypt a memo for the owner of a public key",
	Args:  cobra.RangeArgs(2, 3),
	RunE: runWithEnv(func(cmd *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		wifKey, err := privateKeyArg(cmd, env, args, 2)
		if err != nil {
			return nil, err
		}
		return env.EncryptMemo(ctx, args[0], wifKey, args[1])
	}),
}

// DecryptMemoCmd decrypts a memo.
var DecryptMemoCmd = &cobra.Command{
	Use:   "decrypt-memo [memo] [public-key] [wif]",
	Short: "Decrypt a memo from the owner of a public key",
	Args:  cobra.RangeArgs(2, 3),
	RunE: runWithEnv(func(cmd *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		wifKey, err := privateKeyArg(cmd, env, args, 2)
		if err != nil {
			return nil, err
		}
		return env.DecryptMemo(ctx, args[0], wifKey, args[1])
	}),
}

// Base58Cmd groups the base58 conversions.
var Base58Cmd = &cobra.Command{
	Use:   "base58",
	Short: "Convert between hex and base58",
}

var base58EncodeCmd = &cobra.Command{
	Use:   "encode [hex]",
	Short: "Encode hex data as base58",
	Args:  cobra.ExactArgs(1),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.ToBase58(ctx, args[0])
	}),
}

var base58DecodeCmd = &cobra.Command{
	Use:   "decode [base58]",
	Short: "Decode base58 text to hex",
	Args:  cobra.ExactArgs(1),
	RunE: runWithEnv(func(_ *cobra.Command, env *rpccore.Environment, ctx *rpctypes.Context, args []string) (any, error) {
		return env.FromBase58(ctx, args[0])
	}),
}

func init() {
	DigestCmd.Flags().StringVar(&chainIDFlag, "chain-id", "", "hex chain id; defaults to the configured chain")
	for _, cmd := range []*cobra.Command{SignCmd, EncryptMemoCmd, DecryptMemoCmd} {
		cmd.Flags().StringVar(&fromFlag, "from", "", "name of a keystore key to use instead of a WIF argument")
	}
	Base58Cmd.AddCommand(base58EncodeCmd, base58DecodeCmd)
}
