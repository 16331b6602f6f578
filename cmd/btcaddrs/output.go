package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/complex-gh/btcaddrs"
)

// renderText writes the human readable report: the mnemonic banner, one
// block per address index and a closing notice.
func renderText(w io.Writer, res *btcaddrs.Result, showXpub bool) error {
	var b strings.Builder

	b.WriteString("====== MNEMONIC ======\n")
	b.WriteString(res.Mnemonic + "\n")
	b.WriteString("======================\n\n")

	if showXpub && len(res.Accounts) > 0 {
		b.WriteString("--- Account extended public keys ---\n")
		for _, acct := range res.Accounts {
			fmt.Fprintf(&b, "  %s (%s %s)\n", acct.ExtendedPublicKey, acct.Scheme, acct.Path)
		}
		b.WriteString("\n")
	}

	for _, entry := range res.Entries {
		fmt.Fprintf(&b, "--- Address index %d ---\n", entry.Index)
		for i, scheme := range btcaddrs.Schemes {
			if i > 0 {
				b.WriteString("\n")
			}
			info := entry.For(scheme)
			fmt.Fprintf(&b, "%s:\n", scheme.Description())
			fmt.Fprintf(&b, "  address: %s\n", info.Address)
			fmt.Fprintf(&b, "  pubkey_hex: %s\n", info.PubKeyHex)
			fmt.Fprintf(&b, "  private_wif: %s\n", info.PrivateWIF)
			fmt.Fprintf(&b, "  path: %s\n", info.Path)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("NOTE: Do NOT use these keys/mnemonics with real funds unless you understand the risks.\n")
	if res.Network == btcaddrs.Mainnet.Name() {
		b.WriteString("Use --testnet to create addresses for Bitcoin testnet.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
