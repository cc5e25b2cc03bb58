package crypto

import (
	"errors"
	"fmt"
)

// ErrCrypto is the class sentinel for every failure produced by this
// package: wrong password, tampered ciphertext, malformed secured key.
// Callers must match it with [errors.Is]; the concrete cause is carried in
// the chain for logging but is not part of the contract.
var ErrCrypto = errors.New("crypto error")

// Error annotates a low-level cipher or KDF failure with the operation that
// produced it. It matches [ErrCrypto] via errors.Is and unwraps to the
// underlying cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is [ErrCrypto], making every *Error a member of
// the crypto error class regardless of its cause.
func (e *Error) Is(target error) bool { return target == ErrCrypto }
