package store

import "github.com/keymaster/keymaster/internal/logger"

// Repositories aggregates every repository backed by one database
// connection.
type Repositories struct {
	UserPass UserPassRepository
	Config   ConfigRepository
}

// NewRepositories wires all repositories to db.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserPass: NewUserPassRepository(db, log),
		Config:   NewConfigRepository(db, log),
	}
}
