// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/matryer/is"
	"pgregory.net/rapid"
)

// TestEncodeWIF_MatchesBtcutil cross-checks the encoder against btcutil for
// random keys, both compression flags and both networks
func TestEncodeWIF_MatchesBtcutil(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scalar := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "scalar")
		compressed := rapid.Bool().Draw(t, "compressed")
		net := rapid.SampledFrom([]*Network{Mainnet, Testnet}).Draw(t, "network")

		if _, err := PublicKeyPoint(scalar); err != nil {
			return // out of range scalars are covered elsewhere
		}

		got, err := EncodeWIF(scalar, net, compressed)
		if err != nil {
			t.Fatal(err)
		}

		priv, _ := btcec.PrivKeyFromBytes(scalar)
		ref, err := btcutil.NewWIF(priv, net.Params(), compressed)
		if err != nil {
			t.Fatal(err)
		}
		if got != ref.String() {
			t.Fatalf("wif %s != %s", got, ref.String())
		}

		decoded, comp, err := DecodeWIF(got, net)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, scalar) || comp != compressed {
			t.Fatalf("round trip mismatch: %x %v", decoded, comp)
		}
	})
}

// TestEncodeWIF_Prefixes tests the leading character per network
func TestEncodeWIF_Prefixes(t *testing.T) {
	is := is.New(t)

	scalar := bytes.Repeat([]byte{0x11}, 32)

	main, err := EncodeWIF(scalar, Mainnet, true)
	is.NoErr(err)
	is.True(main[0] == 'K' || main[0] == 'L')

	mainUncompressed, err := EncodeWIF(scalar, Mainnet, false)
	is.NoErr(err)
	is.Equal(mainUncompressed[0], byte('5'))

	test, err := EncodeWIF(scalar, Testnet, true)
	is.NoErr(err)
	is.Equal(test[0], byte('c'))
}

// TestWIF_Rejects tests bad lengths and wrong networks
func TestWIF_Rejects(t *testing.T) {
	is := is.New(t)

	_, err := EncodeWIF(make([]byte, 33), Mainnet, true)
	is.True(errors.Is(err, ErrEncoding))

	wif, err := EncodeWIF(bytes.Repeat([]byte{0x22}, 32), Mainnet, true)
	is.NoErr(err)

	_, _, err = DecodeWIF(wif, Testnet)
	is.True(errors.Is(err, ErrInvalidAddress))

	// A P2PKH address has the wrong version byte and length for a key
	_, _, err = DecodeWIF("1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", Mainnet)
	is.True(errors.Is(err, ErrInvalidAddress))
}
