package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect/sql/sqlgen"
	"github.com/syssam/querykit/entity"
	"github.com/syssam/querykit/executor"
	"github.com/syssam/querykit/query"
)

// Repository provides the CRUD and query operations of entity E.
// A Repository is safe for concurrent use; the builders it returns are not.
type Repository[E any] struct {
	exec  *executor.Executor
	info  *entity.Info
	table string
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	table string
}

// WithTable overrides the table name of the entity.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

// New returns a repository of entity E running on exec.
func New[E any](exec *executor.Executor, opts ...Option) (*Repository[E], error) {
	info, err := entity.Load[E]()
	if err != nil {
		return nil, err
	}
	o := options{table: info.Table}
	for _, opt := range opts {
		opt(&o)
	}
	if !entity.ValidTable(o.table) {
		return nil, querykit.NewValidationError("table", fmt.Errorf("invalid table name %q", o.table))
	}
	return &Repository[E]{exec: exec, info: info, table: o.table}, nil
}

// Info returns the metadata of E.
func (r *Repository[E]) Info() *entity.Info { return r.info }

// Query returns a new builder on the repository table.
func (r *Repository[E]) Query() *query.Builder[E] {
	return query.New[E](r.table)
}

// Insert inserts rec and stores the generated key in its primary key field.
// It returns the generated key, or executor.UnknownID.
func (r *Repository[E]) Insert(ctx context.Context, rec *E) (int64, error) {
	return r.insert(ctx, rec).Await(ctx)
}

// Update updates the row of rec, identified by its primary key. Nil fields,
// the primary key and immutable columns are left untouched.
func (r *Repository[E]) Update(ctx context.Context, rec *E) (int64, error) {
	return r.update(ctx, rec).Await(ctx)
}

// Delete deletes the row with the given primary key.
func (r *Repository[E]) Delete(ctx context.Context, id any) (int64, error) {
	return r.delete(ctx, id).Await(ctx)
}

// FindByID returns the row with the given primary key. A missing row is
// reported with ok false and a nil error.
func (r *Repository[E]) FindByID(ctx context.Context, id any) (rec *E, ok bool, err error) {
	p, err := r.byID(id)
	if err != nil {
		return nil, false, err
	}
	return r.first(ctx, p)
}

// FindAll returns all rows of the table.
func (r *Repository[E]) FindAll(ctx context.Context) ([]*E, error) {
	return r.Find(ctx, nil)
}

// Find returns the rows matching the builder. A nil builder matches all rows.
func (r *Repository[E]) Find(ctx context.Context, b *query.Builder[E]) ([]*E, error) {
	return r.FindAsync(ctx, b).Await(ctx)
}

// FindAsync is the asynchronous form of Find.
func (r *Repository[E]) FindAsync(ctx context.Context, b *query.Builder[E]) *executor.Future[[]*E] {
	p, err := r.planOf(b)
	if err != nil {
		return executor.Ready[[]*E](nil, err)
	}
	return r.find(ctx, p)
}

// FindOne returns the first row matching the builder.
func (r *Repository[E]) FindOne(ctx context.Context, b *query.Builder[E]) (*E, bool, error) {
	p, err := r.planOf(b)
	if err != nil {
		return nil, false, err
	}
	return r.first(ctx, p)
}

// Count returns the number of rows matching the builder. A nil builder
// counts all rows.
func (r *Repository[E]) Count(ctx context.Context, b *query.Builder[E]) (int64, error) {
	return r.CountAsync(ctx, b).Await(ctx)
}

// CountAsync is the asynchronous form of Count.
func (r *Repository[E]) CountAsync(ctx context.Context, b *query.Builder[E]) *executor.Future[int64] {
	p, err := r.planOf(b)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	stmt, err := r.render(p, sqlgen.Count)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	return r.exec.Count(ctx, stmt)
}

// Exists reports whether any row matches the builder.
func (r *Repository[E]) Exists(ctx context.Context, b *query.Builder[E]) (bool, error) {
	p, err := r.planOf(b)
	if err != nil {
		return false, err
	}
	return r.exists(ctx, p)
}

// ExistsByID reports whether a row with the given primary key exists.
func (r *Repository[E]) ExistsByID(ctx context.Context, id any) (bool, error) {
	p, err := r.byID(id)
	if err != nil {
		return false, err
	}
	return r.exists(ctx, p)
}

// UpdateWhere applies the assignments of the builder (see Builder.Set) to
// all rows matching its conditions. Builders without conditions are
// rejected.
func (r *Repository[E]) UpdateWhere(ctx context.Context, b *query.Builder[E]) (int64, error) {
	p, err := r.planOf(b)
	if err != nil {
		return 0, err
	}
	stmt, err := r.render(p, sqlgen.Update)
	if err != nil {
		return 0, err
	}
	return r.exec.Mutate(ctx, stmt).Await(ctx)
}

// DeleteWhere deletes all rows matching the builder. Builders without
// conditions are rejected.
func (r *Repository[E]) DeleteWhere(ctx context.Context, b *query.Builder[E]) (int64, error) {
	p, err := r.planOf(b)
	if err != nil {
		return 0, err
	}
	stmt, err := r.render(p, sqlgen.Delete)
	if err != nil {
		return 0, err
	}
	return r.exec.Mutate(ctx, stmt).Await(ctx)
}

func (r *Repository[E]) insert(ctx context.Context, rec *E) *executor.Future[int64] {
	if rec == nil {
		return executor.Ready[int64](0, querykit.NewValidationError("insert", errors.New("nil record")))
	}
	values, err := entity.Encode(rec, entity.ForInsert)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	p := r.newPlan()
	p.Set = assignments(values)
	stmt, err := r.render(p, sqlgen.Insert)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	return executor.Then(r.exec.Insert(ctx, stmt), func(id int64) (int64, error) {
		if id != executor.UnknownID {
			if _, err := r.info.SetID(rec, id); err != nil {
				return id, err
			}
		}
		return id, nil
	})
}

func (r *Repository[E]) update(ctx context.Context, rec *E) *executor.Future[int64] {
	if rec == nil {
		return executor.Ready[int64](0, querykit.NewValidationError("update", errors.New("nil record")))
	}
	id, set, err := r.info.ID(rec)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	if !set {
		return executor.Ready[int64](0, querykit.NewValidationError("update", querykit.ErrNilID))
	}
	values, err := entity.Encode(rec, entity.ForUpdate)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	p, err := r.byID(id)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	p.Set = assignments(values)
	stmt, err := r.render(p, sqlgen.Update)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	return r.exec.Mutate(ctx, stmt)
}

func (r *Repository[E]) delete(ctx context.Context, id any) *executor.Future[int64] {
	p, err := r.byID(id)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	stmt, err := r.render(p, sqlgen.Delete)
	if err != nil {
		return executor.Ready[int64](0, err)
	}
	return r.exec.Mutate(ctx, stmt)
}

func (r *Repository[E]) find(ctx context.Context, p *query.Plan) *executor.Future[[]*E] {
	stmt, err := r.render(p, sqlgen.Select)
	if err != nil {
		return executor.Ready[[]*E](nil, err)
	}
	return executor.QueryAs[E](ctx, r.exec, stmt)
}

func (r *Repository[E]) first(ctx context.Context, p *query.Plan) (*E, bool, error) {
	p = p.Clone()
	one := 1
	p.Limit = &one
	recs, err := r.find(ctx, p).Await(ctx)
	if err != nil || len(recs) == 0 {
		return nil, false, err
	}
	return recs[0], true, nil
}

func (r *Repository[E]) exists(ctx context.Context, p *query.Plan) (bool, error) {
	stmt, err := r.render(p, sqlgen.Exists)
	if err != nil {
		return false, err
	}
	return r.exec.Exists(ctx, stmt).Await(ctx)
}

func (r *Repository[E]) render(p *query.Plan, kind sqlgen.Kind) (*sqlgen.Statement, error) {
	return r.exec.Generator().Render(p, kind)
}

// newPlan returns an empty plan on the repository table.
func (r *Repository[E]) newPlan() *query.Plan {
	p := query.NewPlan(r.table)
	p.PK = r.info.PK
	p.UpdateTime = r.info.UpdateTime
	return p
}

// planOf returns the plan of b, or an empty plan if b is nil.
func (r *Repository[E]) planOf(b *query.Builder[E]) (*query.Plan, error) {
	if b == nil {
		return r.newPlan(), nil
	}
	return b.Plan()
}

// byID returns a plan matching the row with the given primary key.
func (r *Repository[E]) byID(id any) (*query.Plan, error) {
	if r.info.PK == nil {
		return nil, querykit.NewValidationError("id", fmt.Errorf("entity %s has no primary key", r.info.Name))
	}
	if isZero(id) {
		return nil, querykit.NewValidationError("id", querykit.ErrNilID)
	}
	p := r.newPlan()
	p.Where.Children = append(p.Where.Children, query.Leaf(r.info.PK, query.OpEQ, id))
	return p, nil
}

func assignments(values []entity.Value) []query.Assignment {
	set := make([]query.Assignment, len(values))
	for i, v := range values {
		set[i] = query.Assignment{Column: v.Column, Value: v.Value}
	}
	return set
}

// isZero reports whether id is nil, a nil pointer or a zero value.
func isZero(id any) bool {
	if id == nil {
		return true
	}
	v := reflect.ValueOf(id)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return v.IsZero()
}
