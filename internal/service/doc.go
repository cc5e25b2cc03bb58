// Package service implements the master-password status machine: the
// decision logic that, given a login context and a user's stored crypto
// record, determines whether the cached master password is usable, stale,
// wrong, unset, or pending re-validation against old credentials, and
// performs the corresponding derive, decrypt, and re-encrypt operations.
//
// Statuses are first-class control-flow values, not errors: callers branch
// on [Status] to drive the login and password-change flows. Only genuinely
// unexpected failures (persistence, programming errors) surface as errors,
// always wrapping [ErrInternal].
package service
