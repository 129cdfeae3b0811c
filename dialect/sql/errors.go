package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/syssam/querykit"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlBadNull                = 1048
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// Constraint classifies a driver error into the constraint it violated.
// It returns querykit.ConstraintNone for other errors.
func Constraint(err error) querykit.Constraint {
	if err == nil {
		return querykit.ConstraintNone
	}
	var (
		pqErr     *pq.Error
		pgErr     *pgconn.PgError
		mysqlErr  *mysql.MySQLError
		sqliteErr *sqlite.Error
	)
	switch {
	case errors.As(err, &pqErr):
		return fromSQLState(string(pqErr.Code))
	case errors.As(err, &pgErr):
		return fromSQLState(pgErr.Code)
	case errors.As(err, &mysqlErr):
		return fromMySQL(mysqlErr.Number)
	case errors.As(err, &sqliteErr):
		if c := fromSQLite(sqliteErr.Code()); c != querykit.ConstraintNone {
			return c
		}
	}
	// Fallback to string matching for drivers that don't expose codes.
	msg := err.Error()
	switch {
	case containsAny(msg, "Error 1062", "violates unique constraint", "UNIQUE constraint failed"):
		return querykit.ConstraintUnique
	case containsAny(msg, "Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"):
		return querykit.ConstraintForeignKey
	case containsAny(msg, "Error 3819", "violates check constraint", "CHECK constraint failed"):
		return querykit.ConstraintCheck
	case containsAny(msg, "Error 1048", "violates not-null constraint", "NOT NULL constraint failed"):
		return querykit.ConstraintNotNull
	default:
		return querykit.ConstraintNone
	}
}

func fromSQLState(code string) querykit.Constraint {
	switch code {
	case pgUniqueViolation:
		return querykit.ConstraintUnique
	case pgForeignKeyViolation:
		return querykit.ConstraintForeignKey
	case pgCheckViolation:
		return querykit.ConstraintCheck
	case pgNotNullViolation:
		return querykit.ConstraintNotNull
	default:
		return querykit.ConstraintNone
	}
}

func fromMySQL(number uint16) querykit.Constraint {
	switch number {
	case mysqlDuplicateEntry:
		return querykit.ConstraintUnique
	case mysqlForeignKeyParent, mysqlForeignKeyChild:
		return querykit.ConstraintForeignKey
	case mysqlCheckConstraintViolate:
		return querykit.ConstraintCheck
	case mysqlBadNull:
		return querykit.ConstraintNotNull
	default:
		return querykit.ConstraintNone
	}
}

func fromSQLite(code int) querykit.Constraint {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return querykit.ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return querykit.ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return querykit.ConstraintCheck
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return querykit.ConstraintNotNull
	default:
		return querykit.ConstraintNone
	}
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
