package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxKeyLen is the number of input bytes bcrypt actually consumes;
// anything past it is silently ignored by the algorithm.
const bcryptMaxKeyLen = 72

// HashKey hashes key with bcrypt at the default cost and returns the
// self-describing hash string.
//
// Keys longer than 72 bytes are pre-hashed with SHA-256 (hex-encoded)
// before being handed to bcrypt, so the whole input contributes to the
// digest instead of being truncated.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(normalizeKey(key), bcrypt.DefaultCost)
	if err != nil {
		return "", &Error{Op: "hash key", Err: err}
	}
	return string(hash), nil
}

// CheckHashKey reports whether key matches the bcrypt hash produced by
// [HashKey]. The same length-based pre-hash rule is applied, so long keys
// verify against their own hashes. The underlying comparison is
// constant-time.
func CheckHashKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), normalizeKey(key)) == nil
}

// normalizeKey applies the over-length pre-hash rule shared by HashKey and
// CheckHashKey.
func normalizeKey(key string) []byte {
	if len(key) > bcryptMaxKeyLen {
		sum := sha256.Sum256([]byte(key))
		return []byte(hex.EncodeToString(sum[:]))
	}
	return []byte(key)
}

// SignMessage computes HMAC-SHA256 over message with key and returns the
// hex-encoded digest. Used to authenticate short messages such as CSRF
// tokens and cookie payloads.
func SignMessage(message, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckMessage reports whether signature is a valid [SignMessage] digest of
// message under key. The comparison is constant-time; never compare
// signatures with ==.
func CheckMessage(message, key, signature string) bool {
	expected := SignMessage(message, key)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
