// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/rs/zerolog"
)

// HardenedKeyStart is the first hardened child index, 2^31.
const HardenedKeyStart = hdkeychain.HardenedKeyStart

// deriveChild performs one BIP32 child derivation. Tests replace it to force
// the invalid child path, which real keys hit with negligible probability.
var deriveChild = func(k *hdkeychain.ExtendedKey, i uint32) (*hdkeychain.ExtendedKey, error) {
	return k.Derive(i)
}

// newMaster creates the BIP32 master key. Tests replace it to force the
// unusable seed path.
var newMaster = hdkeychain.NewMaster

// ExtendedPrivateKey is a BIP32 extended key that carries a private scalar.
// Values are never mutated after creation; every derivation returns a new
// key owned by the caller.
type ExtendedPrivateKey struct {
	key *hdkeychain.ExtendedKey
}

// ExtendedPublicKey is a BIP32 extended key without private material.
type ExtendedPublicKey struct {
	key *hdkeychain.ExtendedKey
}

// MasterFromSeed creates the depth 0 key: HMAC-SHA512 keyed with
// "Bitcoin seed" over the seed, left half as scalar, right half as chain
// code. A scalar that is zero or not below the curve order is reported as
// ErrUnusableSeed.
func MasterFromSeed(seed []byte, net *Network) (*ExtendedPrivateKey, error) {
	k, err := newMaster(seed, net.params)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrUnusableSeed) {
			return nil, fmt.Errorf("%w: master key out of range", ErrUnusableSeed)
		}
		return nil, fmt.Errorf("could not create master key: %w", err)
	}
	return &ExtendedPrivateKey{key: k}, nil
}

// DeriveChild derives the child at index. index is the position within its
// level and must be below 2^31; hardened selects the hardened variant
// (index + 2^31), which mixes the parent private scalar into the HMAC
// instead of the parent public key.
//
// A child whose scalar is zero or not below the curve order is reported as
// ErrInvalidChildKey; use DeriveNextChild to skip past it.
func DeriveChild(parent *ExtendedPrivateKey, index uint32, hardened bool) (*ExtendedPrivateKey, error) {
	if index >= HardenedKeyStart {
		return nil, fmt.Errorf("%w: child index %d must be below 2^31", ErrInvalidConfiguration, index)
	}

	i := index
	if hardened {
		i += HardenedKeyStart
	}

	child, err := deriveChild(parent.key, i)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrInvalidChild) {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidChildKey, index)
		}
		return nil, fmt.Errorf("could not derive child %d: %w", index, err)
	}
	return &ExtendedPrivateKey{key: child}, nil
}

// DeriveNextChild derives the first valid child at or after index, as
// BIP32 prescribes when a child key is invalid. It returns the key and the
// index that was actually used. Skipped indices are logged to the package
// logger.
func DeriveNextChild(parent *ExtendedPrivateKey, index uint32, hardened bool) (*ExtendedPrivateKey, uint32, error) {
	return deriveNextChild(parent, index, hardened, Logger())
}

func deriveNextChild(parent *ExtendedPrivateKey, index uint32, hardened bool, log zerolog.Logger) (*ExtendedPrivateKey, uint32, error) {
	for i := index; i < HardenedKeyStart; i++ {
		child, err := DeriveChild(parent, i, hardened)
		if errors.Is(err, ErrInvalidChildKey) {
			log.Warn().
				Uint32("index", i).
				Bool("hardened", hardened).
				Msg("invalid child key, skipping to next index")
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		return child, i, nil
	}
	return nil, 0, fmt.Errorf("%w: no valid child at or after index %d", ErrInvalidChildKey, index)
}

// Depth returns the number of derivation steps from the master key.
func (k *ExtendedPrivateKey) Depth() uint8 { return k.key.Depth() }

// ChainCode returns a copy of the 32-byte chain code.
func (k *ExtendedPrivateKey) ChainCode() []byte { return k.key.ChainCode() }

// ParentFingerprint returns the first four bytes of the parent's key
// identifier, or zero for the master key.
func (k *ExtendedPrivateKey) ParentFingerprint() uint32 { return k.key.ParentFingerprint() }

// ChildIndex returns the index of this key within its level, without the
// hardened offset.
func (k *ExtendedPrivateKey) ChildIndex() uint32 { return k.key.ChildIndex() &^ HardenedKeyStart }

// IsHardened reports whether this key was derived with a hardened index.
func (k *ExtendedPrivateKey) IsHardened() bool {
	return k.key.Depth() > 0 && k.key.ChildIndex() >= HardenedKeyStart
}

// PrivateKeyBytes returns the 32-byte big endian private scalar. The caller
// should clear the slice once done with it.
func (k *ExtendedPrivateKey) PrivateKeyBytes() ([]byte, error) {
	priv, err := k.key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}
	defer priv.Zero()
	return priv.Serialize(), nil
}

// PublicKey returns the 33-byte compressed public key scalar·G.
func (k *ExtendedPrivateKey) PublicKey() ([]byte, error) {
	pub, err := k.key.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("could not compute public key: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// Neuter drops the private scalar and returns the matching public key.
func (k *ExtendedPrivateKey) Neuter() (*ExtendedPublicKey, error) {
	pub, err := k.key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("could not neuter key: %w", err)
	}
	return &ExtendedPublicKey{key: pub}, nil
}

// Serialize returns the Base58Check xprv/tprv encoding. The result is
// secret.
func (k *ExtendedPrivateKey) Serialize() string { return k.key.String() }

// Zero clears the private material held by k. The key is unusable after.
func (k *ExtendedPrivateKey) Zero() { k.key.Zero() }

// DeriveChild derives a non-hardened child from public material only.
func (k *ExtendedPublicKey) DeriveChild(index uint32) (*ExtendedPublicKey, error) {
	if index >= HardenedKeyStart {
		return nil, fmt.Errorf("%w: public derivation cannot produce hardened index %d", ErrInvalidConfiguration, index)
	}
	child, err := deriveChild(k.key, index)
	if err != nil {
		if errors.Is(err, hdkeychain.ErrInvalidChild) {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidChildKey, index)
		}
		return nil, fmt.Errorf("could not derive public child %d: %w", index, err)
	}
	return &ExtendedPublicKey{key: child}, nil
}

// Depth returns the number of derivation steps from the master key.
func (k *ExtendedPublicKey) Depth() uint8 { return k.key.Depth() }

// ChainCode returns a copy of the 32-byte chain code.
func (k *ExtendedPublicKey) ChainCode() []byte { return k.key.ChainCode() }

// ParentFingerprint returns the parent key fingerprint.
func (k *ExtendedPublicKey) ParentFingerprint() uint32 { return k.key.ParentFingerprint() }

// ChildIndex returns the index without the hardened offset.
func (k *ExtendedPublicKey) ChildIndex() uint32 { return k.key.ChildIndex() &^ HardenedKeyStart }

// IsHardened reports whether this key was derived with a hardened index.
func (k *ExtendedPublicKey) IsHardened() bool {
	return k.key.Depth() > 0 && k.key.ChildIndex() >= HardenedKeyStart
}

// PublicKey returns the 33-byte compressed public key.
func (k *ExtendedPublicKey) PublicKey() ([]byte, error) {
	pub, err := k.key.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("could not parse public key: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// String returns the Base58Check xpub/tpub encoding.
func (k *ExtendedPublicKey) String() string { return k.key.String() }

// PublicKeyPoint multiplies the secp256k1 base point by a 32-byte big endian
// scalar and returns the compressed point. The scalar must be non-zero and
// below the curve order.
//
// The multiplication is btcec's variable time ScalarBaseMultNonConst, so
// its timing depends on the scalar.
func PublicKeyPoint(scalar []byte) ([]byte, error) {
	if len(scalar) != 32 {
		return nil, fmt.Errorf("%w: scalar must be 32 bytes, got %d", ErrEncoding, len(scalar))
	}

	var s btcec.ModNScalar
	overflow := s.SetByteSlice(scalar)
	zero := s.IsZero()
	s.Zero()
	if overflow || zero {
		return nil, fmt.Errorf("%w: scalar is zero or not below the curve order", ErrInvalidChildKey)
	}

	priv, pub := btcec.PrivKeyFromBytes(scalar)
	defer priv.Zero()
	return pub.SerializeCompressed(), nil
}
