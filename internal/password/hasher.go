// Package password hashes and verifies credentials with argon2.
//
// Hashes are encoded as PHC strings so that verification needs nothing but
// the stored value:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrHashing reports an internal crypto failure or a malformed stored hash.
var ErrHashing = errors.New("password: hashing error")

// Limits applied when decoding a stored hash.
const (
	maxMemory      = 1 << 20 // KiB
	maxTime        = 16
	maxParallelism = 16
	minSaltLen     = 8
	maxSaltLen     = 64
	minKeyLen      = 16
	maxKeyLen      = 64
)

// Hasher derives argon2id hashes with fixed parameters.
type Hasher struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen int
	keyLen  uint32
}

// Option configures the hasher.
type Option func(*Hasher)

// WithMemory sets the memory cost in KiB (default: 19456).
func WithMemory(m uint32) Option {
	return func(h *Hasher) { h.memory = m }
}

// WithTime sets the number of iterations (default: 2).
func WithTime(t uint32) Option {
	return func(h *Hasher) { h.time = t }
}

// WithThreads sets the parallelism (default: 1).
func WithThreads(p uint8) Option {
	return func(h *Hasher) { h.threads = p }
}

// NewHasher creates an argon2id hasher. Defaults match the PHC strings already
// stored by earlier deployments of the service.
func NewHasher(opts ...Option) *Hasher {
	h := &Hasher{
		memory:  19 * 1024,
		time:    2,
		threads: 1,
		saltLen: 16,
		keyLen:  32,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the PHC encoding of plaintext under a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: generate salt: %v", ErrHashing, err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches encoded. A mismatch is (false, nil);
// an encoded value that cannot be decoded is (false, ErrHashing).
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	p, err := decode(encoded)
	if err != nil {
		return false, err
	}

	var key []byte
	switch p.variant {
	case "argon2id":
		key = argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	case "argon2i":
		key = argon2.Key([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	}

	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

type params struct {
	variant string
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decode(encoded string) (*params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: invalid hash format", ErrHashing)
	}

	p := &params{variant: parts[1]}
	if p.variant != "argon2id" && p.variant != "argon2i" {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrHashing, p.variant)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: parse version: %v", ErrHashing, err)
	}
	// Sscanf stops at the last verb, so trailing input has to be caught here.
	if fmt.Sprintf("v=%d", version) != parts[2] {
		return nil, fmt.Errorf("%w: invalid version segment %q", ErrHashing, parts[2])
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrHashing, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("%w: parse params: %v", ErrHashing, err)
	}
	if fmt.Sprintf("m=%d,t=%d,p=%d", p.memory, p.time, p.threads) != parts[3] {
		return nil, fmt.Errorf("%w: invalid params segment %q", ErrHashing, parts[3])
	}
	if p.memory == 0 || p.memory > maxMemory ||
		p.time == 0 || p.time > maxTime ||
		p.threads == 0 || p.threads > maxParallelism ||
		p.memory < 8*uint32(p.threads) {
		return nil, fmt.Errorf("%w: params out of range", ErrHashing)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.Strict().DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: decode salt: %v", ErrHashing, err)
	}
	if len(p.salt) < minSaltLen || len(p.salt) > maxSaltLen {
		return nil, fmt.Errorf("%w: salt length %d out of range", ErrHashing, len(p.salt))
	}

	if p.key, err = base64.RawStdEncoding.Strict().DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: decode hash: %v", ErrHashing, err)
	}
	if len(p.key) < minKeyLen || len(p.key) > maxKeyLen {
		return nil, fmt.Errorf("%w: hash length %d out of range", ErrHashing, len(p.key))
	}

	return p, nil
}
