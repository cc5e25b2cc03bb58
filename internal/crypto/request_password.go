package crypto

import (
	"crypto/sha1"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for the request-fingerprint derivation. SHA-1 and the
// iteration count are kept for compatibility with hashes already derived by
// existing deployments.
const (
	requestKDFIterations = 5000
	requestKDFKeyLen     = 32
)

// RequestBasedPassword derives a reproducible, server-salted key from a
// client's request fingerprint. Nothing is stored: the same client (same
// User-Agent and address) against the same server salt always produces the
// same key. The result seeds cookie-level encryption and is deliberately
// separate from the master-password hierarchy.
type RequestBasedPassword struct {
	// UserAgent is the raw User-Agent header value.
	UserAgent string

	// ClientAddress is the remote client IP address.
	ClientAddress string

	// Salt is the server-wide password salt secret.
	Salt string
}

// Build computes the derived key:
//
//	wellKnown = SHA1hex(UserAgent ‖ ClientAddress)
//	key       = PBKDF2-SHA1(wellKnown, Salt, 5000 iterations, 32 bytes)
func (r RequestBasedPassword) Build() []byte {
	sum := sha1.Sum([]byte(r.UserAgent + r.ClientAddress))
	wellKnown := hex.EncodeToString(sum[:])

	return pbkdf2.Key([]byte(wellKnown), []byte(r.Salt), requestKDFIterations, requestKDFKeyLen, sha1.New)
}
