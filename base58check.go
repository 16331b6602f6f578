// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

const checksumSize = 4

// checkEncode returns Base58(version || payload || checksum) where checksum
// is the first four bytes of SHA256(SHA256(version || payload)).
func checkEncode(version byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+checksumSize)
	buf = append(buf, version)
	buf = append(buf, payload...)
	sum := chainhash.DoubleHashB(buf)
	buf = append(buf, sum[:checksumSize]...)

	s := base58.Encode(buf)
	clear(buf)
	return s
}

// checkDecode reverses checkEncode and verifies the checksum.
func checkDecode(s string) (byte, []byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err) //nolint:errorlint
	}
	if len(raw) < 1+checksumSize {
		return 0, nil, fmt.Errorf("%w: payload too short", ErrInvalidAddress)
	}

	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	want := chainhash.DoubleHashB(body)
	if !bytes.Equal(sum, want[:checksumSize]) {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}

	return body[0], body[1:], nil
}
