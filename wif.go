// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"fmt"
)

const (
	privateKeyLen      = 32
	compressedKeyFlag  = 0x01
	compressedWIFBytes = privateKeyLen + 1
)

// EncodeWIF returns the Wallet Import Format string for a 32-byte private
// scalar: Base58Check(version || scalar || 0x01 if compressed).
func EncodeWIF(scalar []byte, net *Network, compressed bool) (string, error) {
	if len(scalar) != privateKeyLen {
		return "", fmt.Errorf("%w: private key must be %d bytes, got %d", ErrEncoding, privateKeyLen, len(scalar))
	}

	payload := make([]byte, 0, compressedWIFBytes)
	payload = append(payload, scalar...)
	if compressed {
		payload = append(payload, compressedKeyFlag)
	}
	defer clear(payload)

	return checkEncode(net.PrivateKeyID(), payload), nil
}

// DecodeWIF parses a WIF string for net and returns the private scalar and
// whether the matching public key is compressed.
func DecodeWIF(wif string, net *Network) ([]byte, bool, error) {
	version, payload, err := checkDecode(wif)
	if err != nil {
		return nil, false, err
	}
	if version != net.PrivateKeyID() {
		return nil, false, fmt.Errorf("%w: version byte 0x%02x is not a %s private key", ErrInvalidAddress, version, net)
	}

	switch {
	case len(payload) == compressedWIFBytes && payload[privateKeyLen] == compressedKeyFlag:
		return payload[:privateKeyLen], true, nil
	case len(payload) == privateKeyLen:
		return payload, false, nil
	}
	return nil, false, fmt.Errorf("%w: malformed private key payload", ErrInvalidAddress)
}
