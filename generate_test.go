// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

// TestGenerate_KnownVectors checks account 0 of the test mnemonic against
// the BIP44, BIP84 and BIP86 published addresses
func TestGenerate_KnownVectors(t *testing.T) {
	is := is.New(t)

	res, err := Generate(Request{Mnemonic: testMnemonic, Count: 2})
	is.NoErr(err)
	is.Equal(res.Mnemonic, testMnemonic)
	is.Equal(res.Network, "mainnet")
	is.Equal(len(res.Entries), 2)

	first := res.Entries[0]
	is.Equal(first.Index, uint32(0))
	is.Equal(first.Legacy.Address, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA")
	is.Equal(first.Legacy.Path, "m/44'/0'/0'/0/0")
	is.Equal(first.Segwit.Address, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu")
	is.Equal(first.Segwit.PubKeyHex, "0330d54fd0dd420a6e5f8d3624f5f3482cae350f79d5f0753bf5beef9c2d91af3c")
	is.Equal(first.Segwit.PrivateWIF, "KyZpNDKnfs94vbrwhJneDi77V6jF64PWPF8x5cdJb8ifgg2DUc9d")
	is.Equal(first.Segwit.Path, "m/84'/0'/0'/0/0")
	is.Equal(first.Taproot.Address, "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr")
	is.Equal(first.Taproot.Path, "m/86'/0'/0'/0/0")

	second := res.Entries[1]
	is.Equal(second.Index, uint32(1))
	is.Equal(second.Segwit.Address, "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g")
	is.Equal(second.Taproot.Address, "bc1p4qhjn9zdvkux4e44uhx8tc55attvtyu358kutcqkudyccelu0was9fqzwh")

	is.Equal(len(res.Accounts), 3)
	is.Equal(res.Accounts[2].Path, "m/86'/0'/0'")
	is.Equal(res.Accounts[2].ExtendedPublicKey, "xpub6BgBgsespWvERF3LHQu6CnqdvfEvtMcQjYrcRzx53QJjSxarj2afYWcLteoGVky7D3UKDP9QyrLprQ3VCECoY49yfdDEHGCtMMj92pReUsQ")
}

// TestGenerate_WIFMatchesAddress verifies each WIF decodes to the key behind
// the address printed next to it
func TestGenerate_WIFMatchesAddress(t *testing.T) {
	is := is.New(t)

	res, err := Generate(Request{Mnemonic: testMnemonic, Start: 3, Count: 3})
	is.NoErr(err)

	for _, entry := range res.Entries {
		for _, scheme := range Schemes {
			info := entry.For(scheme)

			wif, err := btcutil.DecodeWIF(info.PrivateWIF)
			is.NoErr(err)
			is.True(wif.CompressPubKey)
			is.Equal(string(wif.SerializePubKey()), string(mustHex(t, info.PubKeyHex)))

			decoded, err := btcutil.DecodeAddress(info.Address, Mainnet.Params())
			is.NoErr(err)
			is.Equal(decoded.EncodeAddress(), info.Address)
		}
	}
}

// TestGenerate_CountZero verifies an empty range returns no entries and does
// no key derivation at all
func TestGenerate_CountZero(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	g := NewGenerator(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	res, err := g.Generate(Request{Mnemonic: testMnemonic, Start: 10, Count: 0})
	is.NoErr(err)
	is.Equal(res.Mnemonic, testMnemonic)
	is.Equal(len(res.Entries), 0)
	is.True(res.Entries != nil)
	is.Equal(len(res.Accounts), 0)
	is.True(!strings.Contains(buf.String(), "account context ready"))
	is.True(strings.Contains(buf.String(), "nothing to derive"))
}

// TestGenerate_OrderedAcrossWorkers checks indices come back strictly
// increasing and identical regardless of the worker count
func TestGenerate_OrderedAcrossWorkers(t *testing.T) {
	is := is.New(t)

	req := Request{Mnemonic: testMnemonic, Account: 1, Start: 5, Count: 24}

	serial, err := NewGenerator(WithWorkers(1)).Generate(req)
	is.NoErr(err)
	parallel, err := NewGenerator(WithWorkers(8)).Generate(req)
	is.NoErr(err)

	is.Equal(len(parallel.Entries), 24)
	for i, entry := range parallel.Entries {
		is.Equal(entry.Index, uint32(5+i))
		is.Equal(entry, serial.Entries[i])
	}
	is.Equal(parallel.Entries[0].Segwit.Path, "m/84'/0'/1'/0/5")
}

// TestGenerate_NewMnemonic tests mnemonic generation with injected entropy
func TestGenerate_NewMnemonic(t *testing.T) {
	is := is.New(t)

	g := NewGenerator(WithEntropy(bytes.NewReader(make([]byte, 16))))
	res, err := g.Generate(Request{Count: 1})
	is.NoErr(err)
	is.Equal(res.Mnemonic, testMnemonic)
	is.Equal(res.Entries[0].Segwit.Address, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu")

	res, err = Generate(Request{WordCount: 24, Count: 1})
	is.NoErr(err)
	is.Equal(len(strings.Fields(res.Mnemonic)), 24)
}

// TestGenerate_Testnet compares mainnet and testnet output for the same
// mnemonic and index
func TestGenerate_Testnet(t *testing.T) {
	is := is.New(t)

	main, err := Generate(Request{Mnemonic: testMnemonic, Count: 1})
	is.NoErr(err)
	test, err := Generate(Request{Mnemonic: testMnemonic, Count: 1, Network: Testnet})
	is.NoErr(err)
	is.Equal(test.Network, "testnet")

	m, tn := main.Entries[0], test.Entries[0]

	is.True(strings.HasPrefix(tn.Legacy.Address, "m") || strings.HasPrefix(tn.Legacy.Address, "n"))
	is.True(strings.HasPrefix(tn.Segwit.Address, "tb1q"))
	is.True(strings.HasPrefix(tn.Taproot.Address, "tb1p"))
	is.Equal(tn.Segwit.PrivateWIF[0], byte('c'))

	// Same path shape, only the coin type differs
	for _, scheme := range Schemes {
		is.Equal(strings.Replace(tn.For(scheme).Path, "/1'/", "/0'/", 1), m.For(scheme).Path)
		is.True(tn.For(scheme).Address != m.For(scheme).Address)
	}

	_, err = DecodeP2PKH(tn.Legacy.Address, Testnet)
	is.NoErr(err)
	version, _, err := DecodeSegwitAddress(tn.Taproot.Address, Testnet)
	is.NoErr(err)
	is.Equal(version, byte(1))
}

// TestGenerate_Passphrase verifies the BIP39 passphrase changes every key
func TestGenerate_Passphrase(t *testing.T) {
	is := is.New(t)

	plain, err := Generate(Request{Mnemonic: testMnemonic, Count: 1})
	is.NoErr(err)
	salted, err := Generate(Request{Mnemonic: testMnemonic, Passphrase: "TREZOR", Count: 1})
	is.NoErr(err)

	for _, scheme := range Schemes {
		is.True(plain.Entries[0].For(scheme).Address != salted.Entries[0].For(scheme).Address)
	}
}

// TestGenerate_Rejects tests that bad requests fail before any work
func TestGenerate_Rejects(t *testing.T) {
	tests := map[string]struct {
		req  Request
		want error
	}{
		"negative count":    {Request{Mnemonic: testMnemonic, Count: -1}, ErrInvalidConfiguration},
		"negative account":  {Request{Mnemonic: testMnemonic, Account: -1, Count: 1}, ErrInvalidConfiguration},
		"hardened account":  {Request{Mnemonic: testMnemonic, Account: 1 << 31, Count: 1}, ErrInvalidConfiguration},
		"negative start":    {Request{Mnemonic: testMnemonic, Start: -5, Count: 1}, ErrInvalidConfiguration},
		"range past 2^31":   {Request{Mnemonic: testMnemonic, Start: 1<<31 - 1, Count: 2}, ErrInvalidConfiguration},
		"bad word count":    {Request{WordCount: 13, Count: 1}, ErrInvalidConfiguration},
		"invalid mnemonic":  {Request{Mnemonic: "abandon abandon abandon", Count: 1}, ErrInvalidMnemonic},
		"checksum mismatch": {Request{Mnemonic: strings.Repeat("abandon ", 12), Count: 1}, ErrInvalidMnemonic},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			res, err := Generate(tt.req)
			is.True(errors.Is(err, tt.want))
			is.True(res == nil)
		})
	}
}

// TestGenerate_LastIndex tests the highest non-hardened address index
func TestGenerate_LastIndex(t *testing.T) {
	is := is.New(t)

	res, err := Generate(Request{Mnemonic: testMnemonic, Start: 1<<31 - 1, Count: 1})
	is.NoErr(err)
	is.Equal(res.Entries[0].Index, uint32(1<<31-1))
	is.Equal(res.Entries[0].Legacy.Path, "m/44'/0'/0'/0/2147483647")
}

// TestResult_JSON checks the serialized field names
func TestResult_JSON(t *testing.T) {
	is := is.New(t)

	res, err := Generate(Request{Mnemonic: testMnemonic, Count: 1})
	is.NoErr(err)

	raw, err := json.Marshal(res)
	is.NoErr(err)

	var decoded map[string]any
	is.NoErr(json.Unmarshal(raw, &decoded))
	is.Equal(decoded["mnemonic"], testMnemonic)

	addrs, ok := decoded["addresses"].([]any)
	is.True(ok)
	entry, ok := addrs[0].(map[string]any)
	is.True(ok)
	for _, key := range []string{"legacy", "bech32", "bech32m"} {
		info, ok := entry[key].(map[string]any)
		is.True(ok)
		is.True(info["address"] != "")
		is.True(info["pubkey_hex"] != "")
		is.True(info["private_wif"] != "")
	}
}

// TestGenerate_SkippedChildStaysUnique verifies that an invalid address key
// never makes two entries share a key: the entry after the skipped one moves
// on as well
func TestGenerate_SkippedChildStaysUnique(t *testing.T) {
	is := is.New(t)

	ref, err := Generate(Request{Mnemonic: testMnemonic, Count: 4})
	is.NoErr(err)

	// Address keys hang off the change key at depth 4
	stubInvalidChild(t, func(k *hdkeychain.ExtendedKey, i uint32) bool {
		return k.Depth() == 4 && i == 1
	})

	res, err := NewGenerator(WithWorkers(3)).Generate(Request{Mnemonic: testMnemonic, Count: 3})
	is.NoErr(err)
	is.Equal(len(res.Entries), 3)

	for k, entry := range res.Entries {
		is.Equal(entry.Index, uint32(k))
	}

	for _, scheme := range Schemes {
		seen := map[string]bool{}
		for _, entry := range res.Entries {
			addr := entry.For(scheme).Address
			is.True(!seen[addr])
			seen[addr] = true
		}

		is.Equal(res.Entries[0].For(scheme), ref.Entries[0].For(scheme))
		is.Equal(res.Entries[1].For(scheme), ref.Entries[2].For(scheme))
		is.Equal(res.Entries[2].For(scheme), ref.Entries[3].For(scheme))
		is.True(strings.HasSuffix(res.Entries[2].For(scheme).Path, "/0/3"))
	}
}

// TestGenerate_UnusableSeed tests that a master key failure returns no result
func TestGenerate_UnusableSeed(t *testing.T) {
	is := is.New(t)

	stubUnusableSeed(t)

	res, err := Generate(Request{Mnemonic: testMnemonic, Count: 5})
	is.True(errors.Is(err, ErrUnusableSeed))
	is.True(res == nil)
}

// TestGenerate_SkipWarningUsesGeneratorLogger checks the invalid child
// warning goes to the logger given to the generator, not the package logger
func TestGenerate_SkipWarningUsesGeneratorLogger(t *testing.T) {
	is := is.New(t)

	var pkgBuf, genBuf bytes.Buffer
	SetLogger(zerolog.New(&pkgBuf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	stubInvalidChild(t, func(k *hdkeychain.ExtendedKey, i uint32) bool {
		return k.Depth() == 4 && i == 0
	})

	g := NewGenerator(WithLogger(zerolog.New(&genBuf)))
	_, err := g.Generate(Request{Mnemonic: testMnemonic, Count: 1})
	is.NoErr(err)

	is.True(strings.Contains(genBuf.String(), "invalid child key, skipping to next index"))
	is.Equal(pkgBuf.String(), "")
}

// TestGenerate_StopsAfterError verifies no further indices are derived once
// one has failed
func TestGenerate_StopsAfterError(t *testing.T) {
	is := is.New(t)

	errBroken := errors.New("broken derivation")
	var calls atomic.Int32

	orig := deriveChild
	deriveChild = func(k *hdkeychain.ExtendedKey, i uint32) (*hdkeychain.ExtendedKey, error) {
		if k.Depth() == 4 {
			calls.Add(1)
			return nil, errBroken
		}
		return orig(k, i)
	}
	t.Cleanup(func() { deriveChild = orig })

	res, err := NewGenerator(WithWorkers(1)).Generate(Request{Mnemonic: testMnemonic, Count: 50})
	is.True(errors.Is(err, errBroken))
	is.True(res == nil)
	is.Equal(calls.Load(), int32(1))
}
