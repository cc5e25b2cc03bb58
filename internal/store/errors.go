package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers should use [errors.Is] to match against these
// values.
var (
	// ErrUserPassNotFound is returned when a query or update targets a user
	// that has no master password record.
	ErrUserPassNotFound = errors.New("user master pass record was not found")

	// ErrUserPassAlreadyExists is returned when inserting a crypto record
	// for a user that already has one; records are replaced through
	// UpdateMasterPassByID, never re-created.
	ErrUserPassAlreadyExists = errors.New("user master pass record already exists")

	// ErrParameterNotFound is returned when a requested configuration
	// parameter has never been written. For the global master password hash
	// this is a first-class condition, not a failure: it means the server
	// has no master password yet.
	ErrParameterNotFound = errors.New("config parameter was not found")

	// ErrNothingToUpdate is returned when an update carries no fields.
	ErrNothingToUpdate = errors.New("update contains no fields")
)

// Low-level database operation errors. These are wrapped by repository
// methods when a SQL-level operation fails before any domain logic can be
// applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")
)
