// Package sql adapts database/sql to the dialect.Driver interface.
//
// A Driver wraps a *sql.DB and executes statements with positional
// arguments:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//		return err
//	}
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, "select id from users where age > $1", []any{18}, rows); err != nil {
//		return err
//	}
//	records, err := sql.ScanMaps(rows)
//
// # Statistics and debugging
//
// StatsDriver counts statements, errors and slow statements. DebugDriver
// logs every statement before it runs:
//
//	drv = sql.NewStatsDriver(sql.NewDebugDriver(drv), sql.WithSlowQueryLog(nil))
//
// # Constraint errors
//
// Constraint classifies driver errors of lib/pq, pgx, go-sql-driver/mysql
// and modernc.org/sqlite into the querykit.Constraint they violated, with a
// message based fallback for other drivers.
package sql
