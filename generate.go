// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package btcaddrs derives deterministic Bitcoin keys and addresses from a
// BIP39 mnemonic phrase.
//
// For every requested address index it produces three outputs from the same
// seed: a legacy P2PKH address on the BIP44 path, a native segwit P2WPKH
// address on the BIP84 path and a key-path-only taproot P2TR address on the
// BIP86 path, each with its compressed public key and WIF private key.
//
// The package only derives and encodes key material. It never builds, signs
// or broadcasts transactions.
package btcaddrs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Request describes one derivation run.
type Request struct {
	// Mnemonic is the BIP39 sentence to derive from. When empty a new
	// mnemonic of WordCount words is generated.
	Mnemonic string

	// WordCount is the length of a generated mnemonic. Zero means
	// DefaultWordCount. It is ignored when Mnemonic is set.
	WordCount int

	// Passphrase is the optional BIP39 passphrase.
	Passphrase string

	// Account is the hardened account level, 0 <= Account < 2^31.
	Account int

	// Start is the first address index and Count the number of indices.
	// Every index in [Start, Start+Count) must be below 2^31.
	Start int
	Count int

	// Network defaults to Mainnet.
	Network *Network
}

// AddressInfo is the rendered key material of one scheme at one index.
type AddressInfo struct {
	Address    string `json:"address"`
	PubKeyHex  string `json:"pubkey_hex"`
	PrivateWIF string `json:"private_wif"`
	Path       string `json:"path"`
}

// Entry holds the three address triples of one requested address index.
// Each triple's Path ends in the index actually derived, which is higher
// than Index only after an invalid child key was skipped.
type Entry struct {
	Index   uint32      `json:"index"`
	Legacy  AddressInfo `json:"legacy"`
	Segwit  AddressInfo `json:"bech32"`
	Taproot AddressInfo `json:"bech32m"`
}

// For returns the triple of the given scheme.
func (e *Entry) For(s Scheme) AddressInfo {
	switch s {
	case SchemeSegwit:
		return e.Segwit
	case SchemeTaproot:
		return e.Taproot
	default:
		return e.Legacy
	}
}

func (e *Entry) set(s Scheme, info AddressInfo) {
	switch s {
	case SchemeLegacy:
		e.Legacy = info
	case SchemeSegwit:
		e.Segwit = info
	case SchemeTaproot:
		e.Taproot = info
	}
}

// AccountKey is the watch-only extended public key of one scheme's account.
type AccountKey struct {
	Scheme            string `json:"scheme"`
	Path              string `json:"path"`
	ExtendedPublicKey string `json:"xpub"`
}

// Result is the complete output of a run. Entries are ordered by address
// index with no gaps.
type Result struct {
	Mnemonic string       `json:"mnemonic"`
	Network  string       `json:"network"`
	Account  uint32       `json:"account"`
	Accounts []AccountKey `json:"accounts,omitempty"`
	Entries  []Entry      `json:"addresses"`
}

// Generator runs derivation requests. The zero value is not usable; create
// one with NewGenerator.
type Generator struct {
	entropy io.Reader
	workers int
	logger  *zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEntropy sets the randomness source used for new mnemonics. It must be
// cryptographically secure outside of tests.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// WithWorkers bounds the number of address indices derived in parallel.
// Values below one are treated as one.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = max(n, 1) }
}

// WithLogger sets the logger for this generator instead of the package
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = &l }
}

// NewGenerator returns a Generator reading entropy from crypto/rand and
// using one worker per available CPU.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		entropy: rand.Reader,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs req with a default Generator.
func Generate(req Request) (*Result, error) {
	return NewGenerator().Generate(req)
}

func (g *Generator) log() zerolog.Logger {
	if g.logger != nil {
		return *g.logger
	}
	return Logger()
}

// validate checks every numeric input before any work is done.
func (r *Request) validate() (account, start, count uint32, err error) {
	const limit = int64(HardenedKeyStart)

	if r.Account < 0 || int64(r.Account) >= limit {
		return 0, 0, 0, fmt.Errorf("%w: account %d must be in [0, 2^31)", ErrInvalidConfiguration, r.Account)
	}
	if r.Start < 0 || int64(r.Start) >= limit {
		return 0, 0, 0, fmt.Errorf("%w: start index %d must be in [0, 2^31)", ErrInvalidConfiguration, r.Start)
	}
	if r.Count < 0 {
		return 0, 0, 0, fmt.Errorf("%w: count %d must not be negative", ErrInvalidConfiguration, r.Count)
	}
	if int64(r.Start)+int64(r.Count) > limit {
		return 0, 0, 0, fmt.Errorf("%w: index range [%d, %d) goes past 2^31", ErrInvalidConfiguration, r.Start, int64(r.Start)+int64(r.Count))
	}
	if r.Mnemonic == "" && r.WordCount != 0 {
		if _, ok := entropyBitsByWordCount[r.WordCount]; !ok {
			return 0, 0, 0, fmt.Errorf("%w: unsupported word count %d (must be 12, 15, 18, 21, or 24)", ErrInvalidConfiguration, r.WordCount)
		}
	}

	return uint32(r.Account), uint32(r.Start), uint32(r.Count), nil //nolint:gosec
}

// Generate derives Count address triples starting at Start for the
// requested account. It either returns a complete result or an error, never
// a partial entry list.
//
// The seed is derived once and one account context is built per scheme;
// those contexts are shared read-only by the workers deriving individual
// indices.
func (g *Generator) Generate(req Request) (*Result, error) {
	account, start, count, err := req.validate()
	if err != nil {
		return nil, err
	}

	net := req.Network
	if net == nil {
		net = Mainnet
	}

	var m Mnemonic
	if req.Mnemonic == "" {
		wordCount := req.WordCount
		if wordCount == 0 {
			wordCount = DefaultWordCount
		}
		m, err = GenerateMnemonicFrom(g.entropy, wordCount)
	} else {
		m, err = ValidateMnemonic(req.Mnemonic)
	}
	if err != nil {
		return nil, err
	}

	log := g.log().With().Str("network", net.Name()).Uint32("account", account).Logger()

	res := &Result{
		Mnemonic: m.String(),
		Network:  net.Name(),
		Account:  account,
		Entries:  []Entry{},
	}
	if count == 0 {
		log.Debug().Msg("empty index range, nothing to derive")
		return res, nil
	}

	began := time.Now()

	seed := DeriveSeed(m, req.Passphrase)
	defer clear(seed)

	accounts := make([]*Context, 0, len(Schemes))
	defer func() {
		for _, acct := range accounts {
			acct.Zero()
		}
	}()

	for _, scheme := range Schemes {
		base, err := baseContext(seed, scheme, net, log)
		if err != nil {
			return nil, err
		}
		acct, err := AccountContext(base, account)
		base.Zero()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)

		xpub, err := acct.ExtendedPublicKey()
		if err != nil {
			return nil, err
		}
		res.Accounts = append(res.Accounts, AccountKey{
			Scheme:            scheme.String(),
			Path:              acct.Path().String(),
			ExtendedPublicKey: xpub,
		})

		log.Debug().
			Str("scheme", scheme.String()).
			Str("path", acct.Path().String()).
			Msg("account context ready")
	}

	entries := make([]Entry, count)
	used := make([][len(Schemes)]uint32, count)

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(g.workers)
	for i := range count {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, idx, err := deriveEntry(accounts, start+i)
			if err != nil {
				return err
			}
			entries[i], used[i] = entry, idx
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := resolveSkipped(accounts, entries, used); err != nil {
		return nil, err
	}

	res.Entries = entries

	log.Debug().
		Uint32("start", start).
		Uint32("count", count).
		Int("workers", g.workers).
		Dur("took", time.Since(began)).
		Msg("derived address range")

	return res, nil
}

// resolveSkipped keeps the address indices used by each scheme strictly
// increasing. An invalid child at index i moves that entry to i+1, which
// would repeat the key of the next entry; such entries are derived again
// after the last index used.
func resolveSkipped(accounts []*Context, entries []Entry, used [][len(Schemes)]uint32) error {
	for s, acct := range accounts {
		for k := 1; k < len(entries); k++ {
			next := used[k-1][s] + 1
			if used[k][s] >= next {
				continue
			}
			info, idx, err := deriveAddressInfo(acct, next)
			if err != nil {
				return err
			}
			entries[k].set(acct.Scheme(), info)
			used[k][s] = idx
		}
	}
	return nil
}

func deriveEntry(accounts []*Context, index uint32) (Entry, [len(Schemes)]uint32, error) {
	var used [len(Schemes)]uint32
	entry := Entry{Index: index}
	for s, acct := range accounts {
		info, idx, err := deriveAddressInfo(acct, index)
		if err != nil {
			return Entry{}, used, err
		}
		entry.set(acct.Scheme(), info)
		used[s] = idx
	}
	return entry, used, nil
}

func deriveAddressInfo(acct *Context, index uint32) (AddressInfo, uint32, error) {
	kp, err := AddressKey(acct, index)
	if err != nil {
		return AddressInfo{}, 0, err
	}
	defer kp.Zero()

	addr, err := kp.Address()
	if err != nil {
		return AddressInfo{}, 0, fmt.Errorf("could not encode %s address %d: %w", acct.Scheme(), index, err)
	}

	wif, err := kp.WIF()
	if err != nil {
		return AddressInfo{}, 0, fmt.Errorf("could not encode %s private key %d: %w", acct.Scheme(), index, err)
	}

	return AddressInfo{
		Address:    addr,
		PubKeyHex:  hex.EncodeToString(kp.PublicKey),
		PrivateWIF: wif,
		Path:       kp.Path.String(),
	}, kp.Index(), nil
}
