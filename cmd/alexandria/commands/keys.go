package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/keystore"
)

var errEmptyPassphrase = errors.New("empty passphrase")

// keystoreOptions are appended to the options derived from the config.
var keystoreOptions []keystore.Option

func openKeystore() (*keystore.Store, error) {
	opts := append([]keystore.Option{
		keystore.WithPubKeyPrefix(config.Chain.AddressPrefix),
		keystore.WithLogger(logger.With("module", "keystore")),
	}, keystoreOptions...)
	return keystore.New(config.KeystoreDir(), opts...)
}

// readPassphrase reads a passphrase without echo from a terminal, or the
// first line of any other input. confirm asks a terminal user twice.
func readPassphrase(cmd *cobra.Command, prompt string, confirm bool) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pass, err := promptPassword(cmd, f, prompt)
		if err != nil {
			return "", err
		}
		if confirm {
			again, err := promptPassword(cmd, f, "Repeat passphrase: ")
			if err != nil {
				return "", err
			}
			if again != pass {
				return "", errors.New("passphrases do not match")
			}
		}
		return pass, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pass := strings.TrimRight(line, "\r\n")
	if pass == "" {
		return "", errEmptyPassphrase
	}
	return pass, nil
}

func promptPassword(cmd *cobra.Command, f *os.File, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pass, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	if len(pass) == 0 {
		return "", errEmptyPassphrase
	}
	return string(pass), nil
}

// KeysCmd manages the passphrase-protected keystore.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage keys in the local keystore",
	Long: `Manage keys in the local keystore. Passphrases are read from the
terminal, or from the first line of standard input.`,
}

var keysAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Generate a new key and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(cmd, "Passphrase: ", true)
		if err != nil {
			return err
		}
		info, err := ks.Create(args[0], passphrase)
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import [name] [wif]",
	Short: "Store an existing WIF private key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment()
		if err != nil {
			return err
		}
		privKey, err := env.Engine.WifToPrivateKey(args[1])
		if err != nil {
			return err
		}
		defer crypto.Zero(privKey)

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(cmd, "Passphrase: ", true)
		if err != nil {
			return err
		}
		info, err := ks.Import(args[0], privKey, passphrase)
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		infos, err := ks.List()
		if err != nil {
			return err
		}
		return printJSON(cmd, infos)
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the public information of a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		info, err := ks.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var keysExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Print a stored key as WIF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment()
		if err != nil {
			return err
		}
		wifKey, err := keystoreWif(cmd, env, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, struct {
			Name       string `json:"name"`
			PrivateKey string `json:"private_key"`
		}{args[0], wifKey})
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(cmd, fmt.Sprintf("Passphrase for %s: ", args[0]), false)
		if err != nil {
			return err
		}
		if err := ks.Delete(args[0], passphrase); err != nil {
			return err
		}
		logger.Info("Deleted key", "name", args[0])
		return nil
	},
}

func init() {
	KeysCmd.AddCommand(keysAddCmd, keysImportCmd, keysListCmd, keysShowCmd, keysExportCmd, keysDeleteCmd)
}
