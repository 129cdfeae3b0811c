package dialect

import "context"

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a statement that returns no rows. v is nil or a
	// *sql.Result receiving the outcome.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows into v, which must be
	// a *sql.Rows of package dialect/sql.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface the executor runs statements on.
type Driver interface {
	ExecQuerier
	// Close closes the underlying connection pool.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Valid reports whether name is a supported dialect.
func Valid(name string) bool {
	switch name {
	case MySQL, SQLite, Postgres:
		return true
	default:
		return false
	}
}
