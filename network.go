// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network holds the constants that differ between Bitcoin mainnet and
// testnet for key derivation and address encoding. Values are immutable and
// shared; use Mainnet or Testnet.
type Network struct {
	name string

	// coinType is the BIP44 coin type, always derived hardened.
	coinType uint32

	params *chaincfg.Params
}

var (
	// Mainnet is Bitcoin main network: coin type 0', P2PKH version 0x00,
	// WIF version 0x80, Bech32 prefix "bc".
	Mainnet = &Network{name: "mainnet", coinType: 0, params: &chaincfg.MainNetParams}

	// Testnet is Bitcoin test network: coin type 1', P2PKH version 0x6f,
	// WIF version 0xef, Bech32 prefix "tb".
	Testnet = &Network{name: "testnet", coinType: 1, params: &chaincfg.TestNet3Params}
)

// NetworkFromFlag resolves the network once from a testnet flag.
func NetworkFromFlag(testnet bool) *Network {
	if testnet {
		return Testnet
	}
	return Mainnet
}

// ParseNetwork resolves a network by name. It accepts "mainnet" (or
// "main", "bitcoin") and "testnet" (or "test", "testnet3").
func ParseNetwork(name string) (*Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mainnet", "main", "bitcoin":
		return Mainnet, nil
	case "testnet", "test", "testnet3":
		return Testnet, nil
	default:
		return nil, fmt.Errorf("%w: unknown network %q", ErrInvalidConfiguration, name)
	}
}

// Name returns "mainnet" or "testnet".
func (n *Network) Name() string { return n.name }

// CoinType returns the unhardened BIP44 coin type.
func (n *Network) CoinType() uint32 { return n.coinType }

// PubKeyHashAddrID returns the P2PKH version byte.
func (n *Network) PubKeyHashAddrID() byte { return n.params.PubKeyHashAddrID }

// PrivateKeyID returns the WIF version byte.
func (n *Network) PrivateKeyID() byte { return n.params.PrivateKeyID }

// Bech32HRP returns the human readable part used for segwit addresses.
func (n *Network) Bech32HRP() string { return n.params.Bech32HRPSegwit }

// Params returns the btcd chain parameters backing this network. The
// returned value must not be modified.
func (n *Network) Params() *chaincfg.Params { return n.params }

func (n *Network) String() string { return n.name }
