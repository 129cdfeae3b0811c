package executor

import (
	"context"
	stdsql "database/sql"
	"errors"
	"log/slog"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/dialect/sql"
	"github.com/syssam/querykit/dialect/sql/sqlgen"
	"github.com/syssam/querykit/entity"
)

// UnknownID is reported by Insert when the driver cannot return the
// generated key of the inserted row.
const UnknownID int64 = 0

// Executor runs rendered statements on a driver. Every statement runs in
// its own goroutine on a pooled connection that is released when the
// statement completes. An Executor is safe for concurrent use.
type Executor struct {
	drv         dialect.Driver
	gen         *sqlgen.Generator
	codec       *entity.Codec
	log         *slog.Logger
	concurrency int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger of the executor and of its codec.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// WithGenerator sets the generator used to render plans. It defaults to a
// generator of the driver's dialect.
func WithGenerator(g *sqlgen.Generator) Option {
	return func(e *Executor) {
		e.gen = g
	}
}

// WithCodec sets the codec used to decode rows.
func WithCodec(c *entity.Codec) Option {
	return func(e *Executor) {
		e.codec = c
	}
}

// WithBatchConcurrency bounds the number of in-flight statements of a
// batch. Zero means unbounded.
func WithBatchConcurrency(n int) Option {
	return func(e *Executor) {
		e.concurrency = n
	}
}

// New returns an Executor running statements on drv.
func New(drv dialect.Driver, opts ...Option) *Executor {
	e := &Executor{drv: drv}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.gen == nil {
		e.gen = sqlgen.New(drv.Dialect())
	}
	if e.codec == nil {
		e.codec = entity.NewCodec(entity.WithLogger(e.log))
	}
	return e
}

// Driver returns the underlying driver.
func (e *Executor) Driver() dialect.Driver { return e.drv }

// Dialect returns the dialect of the underlying driver.
func (e *Executor) Dialect() string { return e.drv.Dialect() }

// Generator returns the generator of the executor.
func (e *Executor) Generator() *sqlgen.Generator { return e.gen }

// Codec returns the codec of the executor.
func (e *Executor) Codec() *entity.Codec { return e.codec }

// BatchConcurrency returns the in-flight bound of batches.
func (e *Executor) BatchConcurrency() int { return e.concurrency }

// Close closes the underlying driver.
func (e *Executor) Close() error { return e.drv.Close() }

// Query runs a statement and returns its rows.
func (e *Executor) Query(ctx context.Context, stmt *sqlgen.Statement) *Future[[]entity.Row] {
	if err := check(stmt); err != nil {
		return Ready[[]entity.Row](nil, err)
	}
	return Go(ctx, func(ctx context.Context) ([]entity.Row, error) {
		rows := &sql.Rows{}
		if err := e.drv.Query(ctx, stmt.SQL, stmt.Args, rows); err != nil {
			return nil, e.fail(ctx, "query", stmt, err)
		}
		maps, err := sql.ScanMaps(rows)
		if err != nil {
			return nil, e.fail(ctx, "query", stmt, err)
		}
		out := make([]entity.Row, len(maps))
		for i, m := range maps {
			out[i] = m
		}
		return out, nil
	})
}

// QueryAs runs a statement and decodes its rows into entities of type E.
func QueryAs[E any](ctx context.Context, e *Executor, stmt *sqlgen.Statement) *Future[[]*E] {
	return Then(e.Query(ctx, stmt), func(rows []entity.Row) ([]*E, error) {
		out := make([]*E, 0, len(rows))
		for _, row := range rows {
			rec, err := entity.DecodeWith[E](e.codec, row)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	})
}

// Count runs a statement returning a single integer, such as a count.
func (e *Executor) Count(ctx context.Context, stmt *sqlgen.Statement) *Future[int64] {
	if err := check(stmt); err != nil {
		return Ready[int64](0, err)
	}
	return Go(ctx, func(ctx context.Context) (int64, error) {
		n, _, err := e.scalar(ctx, "count", stmt)
		return n, err
	})
}

// Exists runs a statement and reports whether it returned any row.
func (e *Executor) Exists(ctx context.Context, stmt *sqlgen.Statement) *Future[bool] {
	if err := check(stmt); err != nil {
		return Ready(false, err)
	}
	return Go(ctx, func(ctx context.Context) (bool, error) {
		_, ok, err := e.scalar(ctx, "exists", stmt)
		return ok, err
	})
}

// Mutate runs a statement and returns the number of affected rows.
func (e *Executor) Mutate(ctx context.Context, stmt *sqlgen.Statement) *Future[int64] {
	if err := check(stmt); err != nil {
		return Ready[int64](0, err)
	}
	return Go(ctx, func(ctx context.Context) (int64, error) {
		var res stdsql.Result
		if err := e.drv.Exec(ctx, stmt.SQL, stmt.Args, &res); err != nil {
			return 0, e.fail(ctx, "exec", stmt, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, e.fail(ctx, "exec", stmt, err)
		}
		return n, nil
	})
}

// Insert runs an INSERT and returns the generated key of the new row.
// Statements with a returning column read the key from the result set,
// others ask the driver for the last insert id if the statement has a
// generated key. UnknownID is returned for statements without one and when
// the driver cannot report it.
func (e *Executor) Insert(ctx context.Context, stmt *sqlgen.Statement) *Future[int64] {
	if err := check(stmt); err != nil {
		return Ready[int64](0, err)
	}
	return Go(ctx, func(ctx context.Context) (int64, error) {
		if stmt.Returning != "" {
			id, ok, err := e.scalar(ctx, "insert", stmt)
			if err != nil || !ok {
				return UnknownID, err
			}
			return id, nil
		}
		var res stdsql.Result
		if err := e.drv.Exec(ctx, stmt.SQL, stmt.Args, &res); err != nil {
			return UnknownID, e.fail(ctx, "insert", stmt, err)
		}
		if !stmt.GeneratedKey {
			return UnknownID, nil
		}
		id, err := res.LastInsertId()
		if err != nil {
			e.log.DebugContext(ctx, "querykit: generated key unavailable", "dialect", e.Dialect(), "error", err)
			return UnknownID, nil
		}
		return id, nil
	})
}

// MutateBatch runs the statements concurrently and returns the number of
// affected rows of each.
func (e *Executor) MutateBatch(ctx context.Context, stmts []*sqlgen.Statement) *Future[[]Result[int64]] {
	return Batch(ctx, e.concurrency, len(stmts), func(ctx context.Context, i int) (int64, error) {
		return e.Mutate(ctx, stmts[i]).Get()
	})
}

func (e *Executor) scalar(ctx context.Context, op string, stmt *sqlgen.Statement) (int64, bool, error) {
	rows := &sql.Rows{}
	if err := e.drv.Query(ctx, stmt.SQL, stmt.Args, rows); err != nil {
		return 0, false, e.fail(ctx, op, stmt, err)
	}
	n, ok, err := sql.ScanInt64(rows)
	if err != nil {
		return 0, false, e.fail(ctx, op, stmt, err)
	}
	return n, ok, nil
}

// fail wraps a driver error in an ExecutionError.
func (e *Executor) fail(ctx context.Context, op string, stmt *sqlgen.Statement, err error) error {
	exec := querykit.NewExecutionError(op, stmt.SQL, err)
	exec.Constraint = sql.Constraint(err)
	e.log.DebugContext(ctx, "querykit: statement failed", "op", op, "sql", stmt.SQL, "constraint", exec.Constraint.String(), "error", err)
	return exec
}

func check(stmt *sqlgen.Statement) error {
	if stmt == nil || stmt.SQL == "" {
		return querykit.NewValidationError("statement", errors.New("empty statement"))
	}
	return nil
}
