// Package main provides the btcaddrs CLI tool for deriving Bitcoin addresses
// from a BIP39 mnemonic.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/complex-gh/btcaddrs"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "btcaddrs",
		Short: "Derive Bitcoin addresses (BIP44/BIP84/BIP86) from a seed phrase",
		Long: `Derive Bitcoin addresses from a BIP39 seed phrase.

For every address index three addresses are printed, all from the same seed:
- Legacy P2PKH on m/44'/coin'/account'/0/index
- Native segwit P2WPKH on m/84'/coin'/account'/0/index
- Taproot P2TR on m/86'/coin'/account'/0/index

Each address comes with its compressed public key and its WIF private key.
When no mnemonic is given a new one is generated and printed.

Every flag can also be set with an environment variable prefixed with
BTCADDRS_, for example BTCADDRS_MNEMONIC or BTCADDRS_TESTNET=true.

SECURITY TIP: Prefer --mnemonic - (stdin) or BTCADDRS_MNEMONIC so the phrase
is not saved in your shell history.`,
		Example: `  btcaddrs
  btcaddrs --words 24 --testnet
  btcaddrs --mnemonic - --count 5 < phrase.txt
  btcaddrs --mnemonic - --account 1 --start 10 --count 3 --json
  btcaddrs --mnemonic - --ask-passphrase --xpub`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	manCmd := &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), manPage.Build(roff.NewDocument()))
			return err
		},
	}

	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for btcaddrs.

To load completions:

Bash:
  $ source <(btcaddrs completion bash)

Zsh:
  $ btcaddrs completion zsh > "${fpath[1]}/_btcaddrs"

Fish:
  $ btcaddrs completion fish | source

PowerShell:
  PS> btcaddrs completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}

	registerFlags(rootCmd.Flags())
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(completionCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// run derives and prints the requested address range.
func run(cfg *config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, cfg.LogLevel, cfg.LogJSON)
	btcaddrs.SetLogger(logger)

	if err := setLanguage(cfg.Language); err != nil {
		return err
	}

	mnemonic := cfg.Mnemonic
	if mnemonic == "-" {
		var err error
		mnemonic, err = readMnemonic(stdin)
		if err != nil {
			return err
		}
	}

	passphrase := cfg.Passphrase
	if cfg.AskPassphrase {
		pass, err := readPassword("Enter BIP39 passphrase: ")
		if err != nil {
			return err
		}
		passphrase = string(pass)
		clear(pass)
	}

	opts := []btcaddrs.Option{btcaddrs.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, btcaddrs.WithWorkers(cfg.Workers))
	}

	res, err := btcaddrs.NewGenerator(opts...).Generate(btcaddrs.Request{
		Mnemonic:   mnemonic,
		WordCount:  cfg.Words,
		Passphrase: passphrase,
		Account:    cfg.Account,
		Start:      cfg.Start,
		Count:      cfg.Count,
		Network:    btcaddrs.NetworkFromFlag(cfg.Testnet),
	})
	if err != nil {
		return err
	}

	logger.Debug().
		Str("network", res.Network).
		Int("addresses", len(res.Entries)).
		Bool("generated_mnemonic", mnemonic == "").
		Msg("derivation finished")

	if cfg.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return renderText(stdout, res, cfg.Xpub)
}

// readMnemonic reads the phrase from the first non-empty line of r.
func readMnemonic(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("could not read mnemonic: %w", err)
	}
	return "", errors.New("no mnemonic on stdin")
}
