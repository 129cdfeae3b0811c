package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/querykit/dialect"
)

// statement kinds as seen by the driver wrappers.
type op uint8

const (
	opQuery op = iota
	opExec
)

func (o op) String() string {
	if o == opQuery {
		return "query"
	}
	return "exec"
}

// QueryStats accumulates counters for the statements that pass through a
// StatsDriver. It is safe for concurrent use.
type QueryStats struct {
	calls   [2]atomic.Int64 // indexed by op
	elapsed atomic.Int64    // nanoseconds
	slow    atomic.Int64
	failed  atomic.Int64
}

func (s *QueryStats) observe(o op, took time.Duration, slow bool, err error) {
	s.calls[o].Add(1)
	s.elapsed.Add(int64(took))
	if slow {
		s.slow.Add(1)
	}
	if err != nil {
		s.failed.Add(1)
	}
}

// Stats returns the counters as of now.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.calls[opQuery].Load(),
		TotalExecs:    s.calls[opExec].Load(),
		TotalDuration: time.Duration(s.elapsed.Load()),
		SlowQueries:   s.slow.Load(),
		Errors:        s.failed.Load(),
	}
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	for i := range s.calls {
		s.calls[i].Store(0)
	}
	s.elapsed.Store(0)
	s.slow.Store(0)
	s.failed.Store(0)
}

// StatsSnapshot is a copy of the QueryStats counters.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	// SlowQueries counts statements of both kinds above the slow threshold.
	SlowQueries int64
	Errors      int64
}

// AvgDuration is the mean duration over all recorded statements.
func (s StatsSnapshot) AvgDuration() time.Duration {
	if n := s.TotalQueries + s.TotalExecs; n > 0 {
		return s.TotalDuration / time.Duration(n)
	}
	return 0
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(), s.SlowQueries, s.Errors)
}

// SlowQueryHook receives every statement that took longer than the
// threshold of its StatsDriver.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver is a dialect.Driver that times each Query and Exec of the
// wrapped driver and records the outcome in a QueryStats.
type StatsDriver struct {
	dialect.Driver
	stats     QueryStats
	threshold atomic.Int64 // nanoseconds
	onSlow    SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement counts as
// slow. The default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold.Store(int64(d)) }
}

// WithSlowQueryHook registers fn for slow statements.
func WithSlowQueryHook(fn SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.onSlow = fn }
}

// WithSlowQueryLog reports slow statements as warnings on l. A nil l
// means slog.Default.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, d time.Duration) {
		l.WarnContext(ctx, "slow query detected", "duration", d, "query", query, "args", len(args))
	})
}

// NewStatsDriver wraps drv.
//
//	drv = sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond), sql.WithSlowQueryLog(logger))
//	exec := executor.New(drv)
//	...
//	logger.Info("db", "stats", drv.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv}
	s.threshold.Store(int64(100 * time.Millisecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters of the driver.
func (d *StatsDriver) QueryStats() *QueryStats { return &d.stats }

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	return time.Duration(d.threshold.Load())
}

// SetSlowThreshold changes the slow statement threshold. It may be called
// while statements are running.
func (d *StatsDriver) SetSlowThreshold(t time.Duration) { d.threshold.Store(int64(t)) }

func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.timed(ctx, opQuery, query, args, func() error { return d.Driver.Query(ctx, query, args, v) })
}

func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.timed(ctx, opExec, query, args, func() error { return d.Driver.Exec(ctx, query, args, v) })
}

func (d *StatsDriver) timed(ctx context.Context, o op, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	took := time.Since(start)
	slow := took > d.SlowThreshold()
	d.stats.observe(o, took, slow, err)
	if slow && d.onSlow != nil {
		argv, _ := args.([]any)
		d.onSlow(ctx, query, argv, took)
	}
	return err
}

// DebugDriver is a dialect.Driver that logs every statement before it is
// passed to the wrapped driver.
type DebugDriver struct {
	dialect.Driver
	log func(context.Context, ...any)
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog replaces the log function.
func DebugWithLog(fn func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) { d.log = fn }
}

// DebugWithLogger logs statements at debug level on l.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) { l.DebugContext(ctx, fmt.Sprint(v...)) })
}

// NewDebugDriver wraps drv. Without options statements are logged at info
// level on slog.Default.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		log:    func(ctx context.Context, v ...any) { slog.InfoContext(ctx, fmt.Sprint(v...)) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.trace(ctx, opQuery, query, args)
	return d.Driver.Query(ctx, query, args, v)
}

func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.trace(ctx, opExec, query, args)
	return d.Driver.Exec(ctx, query, args, v)
}

func (d *DebugDriver) trace(ctx context.Context, o op, query string, args any) {
	d.log(ctx, fmt.Sprintf("%s: %s args: %v", o, query, args))
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
)
