// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/txscript"
)

const (
	compressedPubKeyLen = 33
	xOnlyPubKeyLen      = 32
	pubKeyHashLen       = 20

	witnessVersionSegwit  byte = 0
	witnessVersionTaproot byte = 1
)

// parseCompressed checks that pub is a 33-byte compressed secp256k1 point.
func parseCompressed(pub []byte) (*btcec.PublicKey, error) {
	if len(pub) != compressedPubKeyLen {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrEncoding, compressedPubKeyLen, len(pub))
	}
	if pub[0] != 0x02 && pub[0] != 0x03 {
		return nil, fmt.Errorf("%w: public key is not in compressed form", ErrEncoding)
	}
	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err) //nolint:errorlint
	}
	return key, nil
}

// EncodeP2PKH returns the legacy address for a compressed public key:
// Base58Check(version || RIPEMD160(SHA256(pub))).
func EncodeP2PKH(pub []byte, net *Network) (string, error) {
	if _, err := parseCompressed(pub); err != nil {
		return "", err
	}
	return checkEncode(net.PubKeyHashAddrID(), btcutil.Hash160(pub)), nil
}

// EncodeP2WPKH returns the native segwit v0 address for a compressed public
// key. The 20-byte witness program is RIPEMD160(SHA256(pub)), encoded with
// Bech32.
func EncodeP2WPKH(pub []byte, net *Network) (string, error) {
	if _, err := parseCompressed(pub); err != nil {
		return "", err
	}
	return encodeSegwit(net.Bech32HRP(), witnessVersionSegwit, btcutil.Hash160(pub))
}

// TaprootOutputKey applies the BIP341 key-path-only tweak to a compressed
// internal key: the key is lifted to even y, tweaked by
// H_TapTweak(x(internal)) and the x coordinate of the result returned.
func TaprootOutputKey(pub []byte) ([]byte, error) {
	internal, err := parseCompressed(pub)
	if err != nil {
		return nil, err
	}
	return schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(internal)), nil
}

// EncodeP2TR returns the taproot address for a 32-byte x-only output key,
// witness version 1, encoded with Bech32m.
func EncodeP2TR(outputKey []byte, net *Network) (string, error) {
	if len(outputKey) != xOnlyPubKeyLen {
		return "", fmt.Errorf("%w: taproot output key must be %d bytes, got %d", ErrEncoding, xOnlyPubKeyLen, len(outputKey))
	}
	return encodeSegwit(net.Bech32HRP(), witnessVersionTaproot, outputKey)
}

func encodeSegwit(hrp string, version byte, program []byte) (string, error) {
	conv, err := bech32.ConvertBits(program, 8, 5, true) //nolint:mnd
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err) //nolint:errorlint
	}

	data := make([]byte, 0, len(conv)+1)
	data = append(data, version)
	data = append(data, conv...)

	var addr string
	if version == witnessVersionSegwit {
		addr, err = bech32.Encode(hrp, data)
	} else {
		addr, err = bech32.EncodeM(hrp, data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err) //nolint:errorlint
	}
	return addr, nil
}

// DecodeP2PKH returns the 20-byte public key hash of a legacy address and
// checks it belongs to net.
func DecodeP2PKH(addr string, net *Network) ([]byte, error) {
	version, payload, err := checkDecode(addr)
	if err != nil {
		return nil, err
	}
	if version != net.PubKeyHashAddrID() {
		return nil, fmt.Errorf("%w: version byte 0x%02x is not P2PKH on %s", ErrInvalidAddress, version, net)
	}
	if len(payload) != pubKeyHashLen {
		return nil, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidAddress, pubKeyHashLen, len(payload))
	}
	return payload, nil
}

// DecodeSegwitAddress returns the witness version and program of a segwit
// address on net. Version 0 must use the Bech32 checksum and version 1 or
// higher the Bech32m checksum.
func DecodeSegwitAddress(addr string, net *Network) (byte, []byte, error) {
	hrp, data, encoding, err := bech32.DecodeGeneric(addr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err) //nolint:errorlint
	}
	if !strings.EqualFold(hrp, net.Bech32HRP()) {
		return 0, nil, fmt.Errorf("%w: prefix %q is not %q", ErrInvalidAddress, hrp, net.Bech32HRP())
	}
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("%w: empty witness data", ErrInvalidAddress)
	}

	version := data[0]
	if version > 16 { //nolint:mnd
		return 0, nil, fmt.Errorf("%w: witness version %d", ErrInvalidAddress, version)
	}
	switch {
	case version == 0 && encoding != bech32.Version0:
		return 0, nil, fmt.Errorf("%w: witness v0 must use bech32", ErrInvalidAddress)
	case version != 0 && encoding != bech32.VersionM:
		return 0, nil, fmt.Errorf("%w: witness v%d must use bech32m", ErrInvalidAddress, version)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false) //nolint:mnd
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err) //nolint:errorlint
	}
	if len(program) < 2 || len(program) > 40 { //nolint:mnd
		return 0, nil, fmt.Errorf("%w: program length %d", ErrInvalidAddress, len(program))
	}
	if version == 0 && len(program) != pubKeyHashLen && len(program) != 32 { //nolint:mnd
		return 0, nil, fmt.Errorf("%w: v0 program length %d", ErrInvalidAddress, len(program))
	}

	return version, program, nil
}
