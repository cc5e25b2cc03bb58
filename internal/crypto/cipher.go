package crypto

import (
	"encoding/base64"
	"fmt"
)

// Encrypt seals plaintext under key with AES-256-GCM and returns the blob
// as a base64 string (nonce ‖ ciphertext). The blob carries an
// authentication tag: decryption with a mismatched key fails closed instead
// of producing garbage.
func Encrypt(plaintext []byte, key Key) (string, error) {
	if !key.valid() {
		return "", &Error{Op: "encrypt", Err: fmt.Errorf("invalid key")}
	}
	blob, err := seal(plaintext, key.raw)
	if err != nil {
		return "", &Error{Op: "encrypt", Err: err}
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt is the inverse of [Encrypt]. It fails with a crypto error on a
// malformed blob, a wrong key, or a tampered ciphertext; this failure is
// the primary signal the status machine uses to detect an unusable master
// password.
func Decrypt(blob string, key Key) ([]byte, error) {
	if !key.valid() {
		return nil, &Error{Op: "decrypt", Err: fmt.Errorf("invalid key")}
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, &Error{Op: "decrypt", Err: fmt.Errorf("bad base64: %w", err)}
	}
	plaintext, err := open(raw, key.raw)
	if err != nil {
		return nil, &Error{Op: "decrypt", Err: err}
	}
	return plaintext, nil
}

// EncryptSecured unlocks sk with password and encrypts plaintext under the
// recovered key. Convenience for the durable path where only the wrapped
// key is at hand.
func EncryptSecured(plaintext []byte, sk SecuredKey, password string) (string, error) {
	key, err := sk.Unlock(password)
	if err != nil {
		return "", err
	}
	return Encrypt(plaintext, key)
}

// DecryptSecured unlocks sk with password and decrypts blob under the
// recovered key.
func DecryptSecured(blob string, sk SecuredKey, password string) ([]byte, error) {
	key, err := sk.Unlock(password)
	if err != nil {
		return nil, err
	}
	return Decrypt(blob, key)
}
