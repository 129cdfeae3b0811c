package executor

import (
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" database/sql driver

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/dialect/sql"
)

// Open opens a connection pool described by cfg and returns an Executor
// running on it. Debug wraps the driver with statement logging, and a
// non-zero SlowThreshold with statistics and slow statement logging.
func Open(cfg querykit.Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drv, err := sql.OpenDriver(cfg.DriverName(), cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, querykit.NewExecutionError("open", "", err)
	}
	db := drv.DB()
	if cfg.Pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}
	if cfg.Pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)
	}

	peek := &Executor{}
	for _, opt := range opts {
		opt(peek)
	}
	log := peek.log
	if log == nil {
		log = slog.Default()
	}

	var d dialect.Driver = drv
	if cfg.Debug {
		d = sql.NewDebugDriver(d, sql.DebugWithLogger(log))
	}
	if cfg.SlowThreshold > 0 {
		d = sql.NewStatsDriver(d, sql.WithSlowThreshold(cfg.SlowThreshold), sql.WithSlowQueryLog(log))
	}
	return New(d, append([]Option{WithBatchConcurrency(cfg.BatchConcurrency)}, opts...)...), nil
}
