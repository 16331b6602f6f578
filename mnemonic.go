// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package btcaddrs

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

const (
	// SeedSize is the length of a BIP39 seed in bytes.
	SeedSize = 64

	// seedIterations is the PBKDF2 round count fixed by BIP39.
	seedIterations = 2048

	// DefaultWordCount is the length of mnemonics generated when the caller
	// does not supply one.
	DefaultWordCount = 12
)

// entropyBitsByWordCount maps the supported BIP39 sentence lengths to the
// entropy size they encode:
//   - 12 words = 128 bits (16 bytes)
//   - 15 words = 160 bits (20 bytes)
//   - 18 words = 192 bits (24 bytes)
//   - 21 words = 224 bits (28 bytes)
//   - 24 words = 256 bits (32 bytes)
var entropyBitsByWordCount = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// Mnemonic is a BIP39 sentence that passed checksum validation. The zero
// value means "no mnemonic" and is never produced by a successful call.
type Mnemonic struct {
	sentence string
}

// String returns the space separated sentence.
func (m Mnemonic) String() string {
	return m.sentence
}

// Words returns the individual words of the sentence.
func (m Mnemonic) Words() []string {
	return strings.Fields(m.sentence)
}

// IsZero reports whether m holds no sentence.
func (m Mnemonic) IsZero() bool {
	return m.sentence == ""
}

// GenerateMnemonic creates a new mnemonic of the given word count using
// crypto/rand as the entropy source.
func GenerateMnemonic(wordCount int) (Mnemonic, error) {
	return GenerateMnemonicFrom(rand.Reader, wordCount)
}

// GenerateMnemonicFrom creates a new mnemonic of the given word count,
// drawing its entropy from r. Valid word counts are 12, 15, 18, 21 or 24.
//
// The reader is expected to be a cryptographically secure source; tests can
// pass a fixed reader to get a reproducible sentence.
func GenerateMnemonicFrom(r io.Reader, wordCount int) (Mnemonic, error) {
	bits, ok := entropyBitsByWordCount[wordCount]
	if !ok {
		return Mnemonic{}, fmt.Errorf("%w: unsupported word count %d (must be 12, 15, 18, 21, or 24)", ErrInvalidConfiguration, wordCount)
	}

	entropy := make([]byte, bits/8)
	defer clear(entropy)

	if _, err := io.ReadFull(r, entropy); err != nil {
		return Mnemonic{}, fmt.Errorf("could not read entropy: %w", err)
	}

	sentence, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Mnemonic{}, fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}

	return Mnemonic{sentence: sentence}, nil
}

// ValidateMnemonic checks a user supplied sentence against the active BIP39
// wordlist. It rejects sentences with an unsupported word count, unknown
// words or a checksum that does not match the encoded entropy.
//
// Words are matched after NFKD normalization and surrounding whitespace is
// ignored, so the returned Mnemonic is always in canonical form.
func ValidateMnemonic(sentence string) (Mnemonic, error) {
	words := strings.Fields(norm.NFKD.String(sentence))
	if _, ok := entropyBitsByWordCount[len(words)]; !ok {
		return Mnemonic{}, fmt.Errorf("%w: got %d words, want 12, 15, 18, 21, or 24", ErrInvalidMnemonic, len(words))
	}

	list := bip39.GetWordList()
	index := make(map[string]int, len(list))
	for i, w := range list {
		index[norm.NFKD.String(w)] = i
	}

	canonical := make([]string, len(words))
	for i, w := range words {
		idx, ok := index[w]
		if !ok {
			return Mnemonic{}, fmt.Errorf("%w: word %d (%q) is not in the wordlist", ErrInvalidMnemonic, i+1, w)
		}
		canonical[i] = list[idx]
	}

	joined := strings.Join(canonical, " ")
	entropy, err := bip39.EntropyFromMnemonic(joined)
	if err != nil {
		if errors.Is(err, bip39.ErrChecksumIncorrect) {
			return Mnemonic{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidMnemonic)
		}
		return Mnemonic{}, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err) //nolint:errorlint
	}
	clear(entropy)

	return Mnemonic{sentence: joined}, nil
}

// DeriveSeed stretches a mnemonic and optional passphrase into the 64-byte
// BIP39 seed: PBKDF2-HMAC-SHA512 over the NFKD normalized sentence, salted
// with "mnemonic" followed by the NFKD normalized passphrase, 2048 rounds.
//
// The caller owns the returned slice and should clear it once the master
// key has been created.
func DeriveSeed(m Mnemonic, passphrase string) []byte {
	password := []byte(norm.NFKD.String(m.sentence))
	salt := []byte(norm.NFKD.String("mnemonic" + passphrase))
	defer clear(password)

	return pbkdf2.Key(password, salt, seedIterations, SeedSize, sha512.New)
}

// SeedFromMnemonic validates sentence and derives its seed in one step.
func SeedFromMnemonic(sentence, passphrase string) ([]byte, error) {
	m, err := ValidateMnemonic(sentence)
	if err != nil {
		return nil, err
	}
	return DeriveSeed(m, passphrase), nil
}
