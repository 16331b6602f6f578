// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import "errors"

var (
	// ErrInvalidMnemonic is returned when a mnemonic has the wrong word count,
	// contains a word outside the active wordlist or fails its checksum.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidChildKey is returned when a derived scalar is zero or not
	// below the curve order. The engine recovers from it by moving on to the
	// next index, so callers only see it when the index space is exhausted.
	ErrInvalidChildKey = errors.New("invalid child key")

	// ErrUnusableSeed is returned when a seed yields a master scalar that is
	// zero or not below the curve order.
	ErrUnusableSeed = errors.New("unusable seed")

	// ErrInvalidConfiguration is returned for out of range account or
	// address indices and negative counts. It is always raised before any
	// derivation work starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidAddress is returned by the decoders for strings that are not a
	// well-formed address or WIF key for the expected network.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrEncoding signals an internal encoding invariant violation, such as a
	// payload of the wrong length reaching an address encoder.
	ErrEncoding = errors.New("encoding failure")
)
