// Package dialect defines the dialect names and the driver interface
// statements are executed on.
//
// The following dialects are supported:
//
//   - Postgres: PostgreSQL, "$n" placeholders
//   - MySQL: MySQL and MariaDB, "?" placeholders
//   - SQLite: SQLite, "?" placeholders
//
// A Driver executes rendered statements:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Close() error
//	    Dialect() string
//	}
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/querykit/dialect"
//	    "github.com/syssam/querykit/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// Sub-packages:
//
//   - dialect/sql: database/sql adapter, statistics and debug drivers
//   - dialect/sql/sqlgen: SQL rendering of query plans
package dialect
