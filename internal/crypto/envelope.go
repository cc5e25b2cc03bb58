package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used to derive the key-encryption key from the
// wrapping password (OWASP 2024 recommendation).
const (
	kdfTime    uint32 = 1
	kdfMemory  uint32 = 64 * 1024 // 64 MiB
	kdfThreads uint8  = 4

	keySize  = 32 // 256-bit DEK and KEK
	saltSize = 16
)

// securedKeyVersion tags the serialized envelope format. Unknown versions
// are rejected on parse.
const securedKeyVersion = "kv1"

// Key is a raw 256-bit symmetric key. The zero value is invalid and is
// rejected by every operation that consumes a Key.
type Key struct {
	raw []byte
}

// GenerateKey returns a fresh random 256-bit [Key] read from the OS CSPRNG.
func GenerateKey() (Key, error) {
	raw := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return Key{}, &Error{Op: "generate key", Err: err}
	}
	return Key{raw: raw}, nil
}

func (k Key) valid() bool { return len(k.raw) == keySize }

// KeyForm selects the representation of a [SecuredKey]: the ASCII-safe
// serialized string suitable for storage at rest, or the parsed in-memory
// envelope kept for the duration of a request.
type KeyForm int

const (
	// FormSerialized keeps the secured key as its ASCII-safe string.
	FormSerialized KeyForm = iota

	// FormLive keeps the parsed envelope in memory, avoiding a re-parse
	// when the key is unlocked within the same request.
	FormLive
)

// envelope is the parsed secured key: the Argon2id parameters and salt that
// recreate the KEK, plus the AES-GCM-wrapped DEK (nonce ‖ ciphertext).
type envelope struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	wrapped []byte
}

// SecuredKey is a randomly generated symmetric key protected by a password:
// the key material is wrapped under an Argon2id-derived KEK and cannot be
// recovered without the exact wrapping password. A SecuredKey is safe to
// persist; replace it (never mutate it) on rotation.
type SecuredKey struct {
	form  KeyForm
	ascii string    // set when form == FormSerialized
	env   *envelope // set when form == FormLive
}

// MakeSecuredKey generates a fresh random 256-bit key and wraps it under
// password, returning the secured key in the requested form.
func MakeSecuredKey(password string, form KeyForm) (SecuredKey, error) {
	dek := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return SecuredKey{}, &Error{Op: "make secured key", Err: err}
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return SecuredKey{}, &Error{Op: "make secured key", Err: err}
	}

	env := &envelope{
		time:    kdfTime,
		memory:  kdfMemory,
		threads: kdfThreads,
		salt:    salt,
	}

	kek := argon2.IDKey([]byte(password), salt, env.time, env.memory, env.threads, keySize)
	wrapped, err := seal(dek, kek)
	if err != nil {
		return SecuredKey{}, &Error{Op: "make secured key", Err: err}
	}
	env.wrapped = wrapped

	switch form {
	case FormLive:
		return SecuredKey{form: FormLive, env: env}, nil
	default:
		return SecuredKey{form: FormSerialized, ascii: env.marshal()}, nil
	}
}

// ParseSecuredKey validates and parses the ASCII-safe serialization of a
// secured key. The result is in [FormLive].
func ParseSecuredKey(s string) (SecuredKey, error) {
	env, err := parseEnvelope(s)
	if err != nil {
		return SecuredKey{}, err
	}
	return SecuredKey{form: FormLive, env: env}, nil
}

// Unlock recreates the KEK from password and unwraps the key material.
// A wrong password or a corrupted envelope fails with a crypto error; a
// usable [Key] is never returned on failure.
func (s SecuredKey) Unlock(password string) (Key, error) {
	env := s.env
	if env == nil {
		var err error
		if env, err = parseEnvelope(s.ascii); err != nil {
			return Key{}, err
		}
	}

	kek := argon2.IDKey([]byte(password), env.salt, env.time, env.memory, env.threads, keySize)
	dek, err := open(env.wrapped, kek)
	if err != nil {
		return Key{}, &Error{Op: "unlock secured key", Err: err}
	}
	return Key{raw: dek}, nil
}

// String returns the ASCII-safe serialization of the secured key,
// regardless of its current form. This is the representation stored in the
// user record.
func (s SecuredKey) String() string {
	if s.env != nil {
		return s.env.marshal()
	}
	return s.ascii
}

// marshal renders the envelope as
// "kv1$t=<time>,m=<memory>,p=<threads>$<b64 salt>$<b64 wrapped>".
func (e *envelope) marshal() string {
	return fmt.Sprintf("%s$t=%d,m=%d,p=%d$%s$%s",
		securedKeyVersion,
		e.time, e.memory, e.threads,
		base64.StdEncoding.EncodeToString(e.salt),
		base64.StdEncoding.EncodeToString(e.wrapped),
	)
}

// parseEnvelope is the inverse of marshal. Any structural defect (wrong
// version, field count, parameter syntax, base64) is a crypto error.
func parseEnvelope(s string) (*envelope, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 4 {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("expected 4 fields, got %d", len(parts))}
	}
	if parts[0] != securedKeyVersion {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("unsupported version %q", parts[0])}
	}

	env := &envelope{}
	if _, err := fmt.Sscanf(parts[1], "t=%d,m=%d,p=%d", &env.time, &env.memory, &env.threads); err != nil {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("bad KDF parameters: %w", err)}
	}
	if env.time == 0 || env.memory == 0 || env.threads == 0 {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("zero KDF parameter in %q", parts[1])}
	}

	var err error
	if env.salt, err = base64.StdEncoding.DecodeString(parts[2]); err != nil {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("bad salt: %w", err)}
	}
	if len(env.salt) != saltSize {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("salt length = %d, want %d", len(env.salt), saltSize)}
	}
	if env.wrapped, err = base64.StdEncoding.DecodeString(parts[3]); err != nil {
		return nil, &Error{Op: "parse secured key", Err: fmt.Errorf("bad key material: %w", err)}
	}

	return env, nil
}

// seal encrypts plaintext under key with AES-256-GCM and returns
// nonce ‖ ciphertext. Shared by the key-wrapping and blob-encryption paths.
func seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend the nonce so open can split it out again.
	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...), nil
}

// open is the inverse of seal. An authentication-tag mismatch (wrong key or
// tampered data) surfaces as the underlying GCM error.
func open(blob, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(blob) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertext, nil)
}
