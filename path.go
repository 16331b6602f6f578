// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Scheme selects one of the three single-key output types and the BIP
// derivation template that goes with it.
type Scheme int

const (
	// SchemeLegacy is P2PKH on m/44'/coin'/account'/0/i.
	SchemeLegacy Scheme = iota
	// SchemeSegwit is P2WPKH on m/84'/coin'/account'/0/i.
	SchemeSegwit
	// SchemeTaproot is key-path-only P2TR on m/86'/coin'/account'/0/i.
	SchemeTaproot
)

// Schemes lists every scheme in output order.
var Schemes = [...]Scheme{SchemeLegacy, SchemeSegwit, SchemeTaproot}

// ChangeExternal is the receiving chain. Change addresses (1) are never
// derived.
const ChangeExternal uint32 = 0

// Purpose returns the hardened purpose level of the scheme (44, 84 or 86).
func (s Scheme) Purpose() uint32 {
	switch s {
	case SchemeLegacy:
		return 44 //nolint:mnd
	case SchemeSegwit:
		return 84 //nolint:mnd
	case SchemeTaproot:
		return 86 //nolint:mnd
	}
	return 0
}

func (s Scheme) valid() bool {
	return s >= SchemeLegacy && s <= SchemeTaproot
}

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeSegwit:
		return "segwit"
	case SchemeTaproot:
		return "taproot"
	}
	return "scheme(" + strconv.Itoa(int(s)) + ")"
}

// Description returns a human label such as "Legacy (P2PKH / BIP44)".
func (s Scheme) Description() string {
	switch s {
	case SchemeLegacy:
		return "Legacy (P2PKH / BIP44)"
	case SchemeSegwit:
		return "Bech32 (P2WPKH / BIP84)"
	case SchemeTaproot:
		return "Bech32m (P2TR / BIP86)"
	}
	return s.String()
}

// PathComponent is one level of a derivation path.
type PathComponent struct {
	Index    uint32
	Hardened bool
}

// Path is an ordered list of derivation levels starting below the master
// key.
type Path []PathComponent

// Child returns a new path with one more level appended; p is not
// modified.
func (p Path) Child(index uint32, hardened bool) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathComponent{Index: index, Hardened: hardened})
}

// String renders the path in the usual m/86'/0'/0'/0/5 notation.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range p {
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(uint64(c.Index), 10))
		if c.Hardened {
			b.WriteByte('\'')
		}
	}
	return b.String()
}

type contextLevel int

const (
	levelCoin contextLevel = iota
	levelAccount
)

// Context is an extended private key positioned at a fixed level of one
// scheme's template, together with the path that produced it. Contexts are
// read-only once returned and may be shared between goroutines.
type Context struct {
	scheme  Scheme
	network *Network
	level   contextLevel
	path    Path
	key     *ExtendedPrivateKey

	// log receives skipped invalid child warnings
	log zerolog.Logger
}

// Scheme returns the scheme this context belongs to.
func (c *Context) Scheme() Scheme { return c.scheme }

// Network returns the network this context derives for.
func (c *Context) Network() *Network { return c.network }

// Path returns the derivation path of the context key.
func (c *Context) Path() Path { return c.path }

// Key returns the extended private key held by the context.
func (c *Context) Key() *ExtendedPrivateKey { return c.key }

// ExtendedPublicKey returns the serialized xpub/tpub of the context key,
// suitable for watch-only import at account level.
func (c *Context) ExtendedPublicKey() (string, error) {
	pub, err := c.key.Neuter()
	if err != nil {
		return "", err
	}
	return pub.String(), nil
}

// Zero clears the private material of the context.
func (c *Context) Zero() { c.key.Zero() }

// BaseContext derives m/purpose'/coin' for the scheme and network from a
// BIP39 seed. The purpose and coin levels are fixed by the template, so an
// invalid child there is returned as ErrInvalidChildKey instead of being
// skipped.
func BaseContext(seed []byte, scheme Scheme, net *Network) (*Context, error) {
	return baseContext(seed, scheme, net, Logger())
}

func baseContext(seed []byte, scheme Scheme, net *Network, log zerolog.Logger) (*Context, error) {
	if !scheme.valid() {
		return nil, fmt.Errorf("%w: unknown scheme %d", ErrInvalidConfiguration, int(scheme))
	}
	if net == nil {
		return nil, fmt.Errorf("%w: network is required", ErrInvalidConfiguration)
	}

	master, err := MasterFromSeed(seed, net)
	if err != nil {
		return nil, err
	}
	defer master.Zero()

	purpose, err := DeriveChild(master, scheme.Purpose(), true)
	if err != nil {
		return nil, fmt.Errorf("could not derive %s purpose key: %w", scheme, err)
	}
	defer purpose.Zero()

	coin, err := DeriveChild(purpose, net.CoinType(), true)
	if err != nil {
		return nil, fmt.Errorf("could not derive %s coin key: %w", scheme, err)
	}

	return &Context{
		scheme:  scheme,
		network: net,
		level:   levelCoin,
		path:    Path{}.Child(scheme.Purpose(), true).Child(net.CoinType(), true),
		key:     coin,
		log:     log,
	}, nil
}

// AccountContext advances a base context by one hardened account level.
// account must be below 2^31.
func AccountContext(base *Context, account uint32) (*Context, error) {
	if base.level != levelCoin {
		return nil, fmt.Errorf("%w: account context needs a coin level context, got %s", ErrInvalidConfiguration, base.path)
	}
	if account >= HardenedKeyStart {
		return nil, fmt.Errorf("%w: account index %d must be below 2^31", ErrInvalidConfiguration, account)
	}

	key, idx, err := deriveNextChild(base.key, account, true, base.log)
	if err != nil {
		return nil, fmt.Errorf("could not derive %s account %d: %w", base.scheme, account, err)
	}

	// hdkeychain caches the public key lazily on first non-hardened
	// derivation; compute it now so concurrent AddressKey calls only read.
	if _, err := key.PublicKey(); err != nil {
		return nil, err
	}

	return &Context{
		scheme:  base.scheme,
		network: base.network,
		level:   levelAccount,
		path:    base.path.Child(idx, true),
		key:     key,
		log:     base.log,
	}, nil
}

// DerivedKeyPair is the key material for one address index of one scheme.
type DerivedKeyPair struct {
	Scheme  Scheme
	Network *Network
	Path    Path

	// Private is the extended private key at the address level.
	Private *ExtendedPrivateKey

	// PublicKey is the 33-byte compressed public key.
	PublicKey []byte

	// TaprootKey is the 32-byte x-only output key after the BIP341 tweak.
	// It is only set for SchemeTaproot.
	TaprootKey []byte
}

// AddressKey derives change 0 and then the address index, both
// non-hardened, below an account context. index must be below 2^31.
func AddressKey(account *Context, index uint32) (*DerivedKeyPair, error) {
	if account.level != levelAccount {
		return nil, fmt.Errorf("%w: address key needs an account context, got %s", ErrInvalidConfiguration, account.path)
	}
	if index >= HardenedKeyStart {
		return nil, fmt.Errorf("%w: address index %d must be below 2^31", ErrInvalidConfiguration, index)
	}

	change, changeIdx, err := deriveNextChild(account.key, ChangeExternal, false, account.log)
	if err != nil {
		return nil, fmt.Errorf("could not derive %s change key: %w", account.scheme, err)
	}
	defer change.Zero()

	key, idx, err := deriveNextChild(change, index, false, account.log)
	if err != nil {
		return nil, fmt.Errorf("could not derive %s address %d: %w", account.scheme, index, err)
	}

	pub, err := key.PublicKey()
	if err != nil {
		return nil, err
	}

	kp := &DerivedKeyPair{
		Scheme:    account.scheme,
		Network:   account.network,
		Path:      account.path.Child(changeIdx, false).Child(idx, false),
		Private:   key,
		PublicKey: pub,
	}

	if account.scheme == SchemeTaproot {
		kp.TaprootKey, err = TaprootOutputKey(pub)
		if err != nil {
			return nil, err
		}
	}

	return kp, nil
}

// Address encodes the pair's public material with the scheme's encoder.
func (kp *DerivedKeyPair) Address() (string, error) {
	switch kp.Scheme {
	case SchemeLegacy:
		return EncodeP2PKH(kp.PublicKey, kp.Network)
	case SchemeSegwit:
		return EncodeP2WPKH(kp.PublicKey, kp.Network)
	case SchemeTaproot:
		return EncodeP2TR(kp.TaprootKey, kp.Network)
	}
	return "", fmt.Errorf("%w: unknown scheme %d", ErrEncoding, int(kp.Scheme))
}

// WIF encodes the private scalar for wallet import, compressed form.
func (kp *DerivedKeyPair) WIF() (string, error) {
	scalar, err := kp.Private.PrivateKeyBytes()
	if err != nil {
		return "", err
	}
	defer clear(scalar)
	return EncodeWIF(scalar, kp.Network, true)
}

// Index returns the address index actually used, which is above the
// requested one when invalid children were skipped.
func (kp *DerivedKeyPair) Index() uint32 { return kp.Path[len(kp.Path)-1].Index }

// Zero clears the private material of the pair.
func (kp *DerivedKeyPair) Zero() { kp.Private.Zero() }
