// Package crypto implements the cryptographic primitives of the master
// password hierarchy: adaptive password hashing and HMAC signing, secured
// keys (a random data-encryption key wrapped under a password-derived key),
// authenticated encryption of opaque blobs, and the request-fingerprint
// key derivation used to seed security cookies.
//
// Scheme:
//
//	DEK        = random 256-bit key                 (per secured key)
//	KEK        = Argon2id(password, salt)           (never stored)
//	SecuredKey = params ‖ salt ‖ AES-GCM(KEK, DEK)  (safe at rest)
//	Blob       = AES-GCM(DEK, plaintext)            (paired with its SecuredKey)
//
// Every failure inside this package wraps [ErrCrypto], so callers can
// branch on errors.Is(err, crypto.ErrCrypto) without inspecting causes.
package crypto
