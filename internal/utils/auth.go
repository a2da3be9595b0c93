package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrMalformedHash   = errors.New("malformed password hash")
)

// passwordHash is a decoded "argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type passwordHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// defaultParams are used for every new hash; stored hashes carry their own.
var defaultParams = passwordHash{memory: 64 * 1024, time: 1, threads: 4}

const (
	saltLen = 16
	keyLen  = 32
)

func (p passwordHash) derive(password string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, keyLen)
}

func (p passwordHash) String() string {
	return fmt.Sprintf("argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.key))
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	var p passwordHash
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return p, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return p, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[1])
	}
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[3]); err != nil {
		return p, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.key) == 0 {
		return p, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	return p, nil
}

// Hash returns the encoded Argon2id hash of password.
func Hash(password string) ([]byte, error) {
	p := defaultParams
	p.salt = make([]byte, saltLen)
	if _, err := rand.Read(p.salt); err != nil {
		return nil, err
	}
	p.key = p.derive(password, keyLen)
	return []byte(p.String()), nil
}

// VerifyPassword checks password against an encoded hash. A wrong password
// is ErrInvalidPassword; an unreadable hash is ErrMalformedHash.
func VerifyPassword(encodedHash, password string) error {
	p, err := parsePasswordHash(encodedHash)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(p.key, p.derive(password, uint32(len(p.key)))) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
