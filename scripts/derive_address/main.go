// derive_address prints the index 0 address of one scheme for a BIP39
// mnemonic, for quick checks against other wallets.
//
// Usage:
//
//	go run ./scripts/derive_address taproot "your 12 word seed phrase here"
//
// Or with stdin:
//
//	echo "your 12 word seed phrase" | go run ./scripts/derive_address segwit
//
// The scheme is one of legacy, segwit or taproot. Set TESTNET=1 for testnet
// addresses.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/btcaddrs"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	scheme, ok := parseScheme(os.Args[1])
	if !ok {
		usage()
	}

	var mnemonic string
	if len(os.Args) > 2 {
		mnemonic = strings.Join(os.Args[2:], " ")
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			mnemonic = strings.TrimSpace(scanner.Text())
		}
	}

	if mnemonic == "" {
		usage()
	}

	res, err := btcaddrs.Generate(btcaddrs.Request{
		Mnemonic: mnemonic,
		Count:    1,
		Network:  btcaddrs.NetworkFromFlag(os.Getenv("TESTNET") != ""),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	info := res.Entries[0].For(scheme)
	fmt.Printf("%s (%s)\n", info.Address, info.Path)
}

func parseScheme(name string) (btcaddrs.Scheme, bool) {
	for _, s := range btcaddrs.Schemes {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: derive_address <legacy|segwit|taproot> \"seed phrase\"")
	fmt.Fprintln(os.Stderr, "   or: echo \"seed phrase\" | derive_address <legacy|segwit|taproot>")
	os.Exit(1)
}
