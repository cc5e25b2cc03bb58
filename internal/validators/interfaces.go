// Package validators enforces structural rules on master-password inputs
// before they reach the crypto or persistence layers.
//
// Implementations of Validator are injected into services and called with
// the value under validation plus optional field names to restrict the
// check to a subset of fields.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
// Implementations may perform structural validation, semantic checks,
// cross-field rules.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
