package main

import (
	"fmt"
	"strings"

	"github.com/complex-gh/btcaddrs"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// envPrefix namespaces the environment variables, e.g. BTCADDRS_COUNT
	envPrefix = "BTCADDRS"

	// MnemonicKey is the BIP39 sentence; "-" reads it from stdin
	MnemonicKey = "mnemonic"
	// PassphraseKey is the optional BIP39 passphrase
	PassphraseKey = "passphrase"
	// AskPassphraseKey prompts for the passphrase on the terminal
	AskPassphraseKey = "ask-passphrase"
	// WordsKey is the length of a newly generated mnemonic
	WordsKey = "words"
	// AccountKey is the hardened account index
	AccountKey = "account"
	// StartKey is the first address index
	StartKey = "start"
	// CountKey is the number of address indices
	CountKey = "count"
	// TestnetKey switches to testnet coin type and encodings
	TestnetKey = "testnet"
	// LanguageKey selects the BIP39 wordlist
	LanguageKey = "language"
	// JSONKey prints the result as JSON
	JSONKey = "json"
	// XpubKey also prints the account extended public keys
	XpubKey = "xpub"
	// WorkersKey bounds the parallel derivation workers, 0 means one per CPU
	WorkersKey = "workers"
	// LogLevelKey is one of debug, info, warn, error
	LogLevelKey = "log-level"
	// LogJSONKey writes logs as JSON instead of console lines
	LogJSONKey = "log-json"
)

type config struct {
	Mnemonic      string
	Passphrase    string
	AskPassphrase bool
	Words         int
	Account       int
	Start         int
	Count         int
	Testnet       bool
	Language      string
	JSON          bool
	Xpub          bool
	Workers       int
	LogLevel      string
	LogJSON       bool
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringP(MnemonicKey, "m", "", `BIP39 mnemonic to derive from ("-" reads stdin, empty generates one)`)
	flags.String(PassphraseKey, "", "BIP39 passphrase")
	flags.Bool(AskPassphraseKey, false, "Prompt for the BIP39 passphrase")
	flags.IntP(WordsKey, "w", btcaddrs.DefaultWordCount, "Word count of a generated mnemonic (12, 15, 18, 21, 24)")
	flags.IntP(AccountKey, "a", 0, "Account index")
	flags.IntP(StartKey, "s", 0, "First address index")
	flags.IntP(CountKey, "c", 1, "Number of address sets to generate")
	flags.Bool(TestnetKey, false, "Generate testnet addresses instead of mainnet")
	flags.StringP(LanguageKey, "l", "en", "Language of the BIP39 wordlist")
	flags.Bool(JSONKey, false, "Print the result as JSON")
	flags.Bool(XpubKey, false, "Also print the account extended public keys")
	flags.Int(WorkersKey, 0, "Parallel derivation workers (0 uses one per CPU)")
	flags.String(LogLevelKey, "warn", "Log level (debug, info, warn, error)")
	flags.Bool(LogJSONKey, false, "Write logs as JSON")
}

// loadConfig resolves every setting from its flag, falling back to the
// BTCADDRS_ environment variable and then to the flag default.
func loadConfig(flags *pflag.FlagSet) (*config, error) {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	if err := vip.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	return &config{
		Mnemonic:      vip.GetString(MnemonicKey),
		Passphrase:    vip.GetString(PassphraseKey),
		AskPassphrase: vip.GetBool(AskPassphraseKey),
		Words:         vip.GetInt(WordsKey),
		Account:       vip.GetInt(AccountKey),
		Start:         vip.GetInt(StartKey),
		Count:         vip.GetInt(CountKey),
		Testnet:       vip.GetBool(TestnetKey),
		Language:      vip.GetString(LanguageKey),
		JSON:          vip.GetBool(JSONKey),
		Xpub:          vip.GetBool(XpubKey),
		Workers:       vip.GetInt(WorkersKey),
		LogLevel:      vip.GetString(LogLevelKey),
		LogJSON:       vip.GetBool(LogJSONKey),
	}, nil
}
