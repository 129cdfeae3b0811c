package query

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/entity"
)

// Builder builds a Plan for entity E with a fluent API. Every method records
// the first error it meets and returns the builder, so calls can be chained
// without checks. The error is reported by Err, Plan and by every statement
// rendered from the builder.
//
// Conditions with a nil value are skipped:
//
//	query.For[User]().
//		Eq(UserName, name).   // skipped when name is nil
//		Ge(UserAge, 18).
//		Or(func(b *query.Builder[User]) {
//			b.Eq(UserStatus, "active").IsNull(UserDeletedAt)
//		})
//
// A Builder is not safe for concurrent use.
type Builder[E any] struct {
	plan *Plan
	// group receives new leaves. It is plan.Where for a root builder.
	group *Node
	err   error
}

// For returns a builder on the table of entity E.
func For[E any]() *Builder[E] {
	p, err := PlanOf[E]()
	if err != nil {
		var e E
		b := newBuilder[E](NewPlan(fmt.Sprintf("%T", e)))
		b.err = err
		return b
	}
	return newBuilder[E](p)
}

// New returns a builder for entity E on the given table.
func New[E any](table string) *Builder[E] {
	b := For[E]()
	b.plan.Table = table
	return b
}

func newBuilder[E any](p *Plan) *Builder[E] {
	return &Builder[E]{plan: p, group: p.Where}
}

// Err returns the first error recorded by the builder.
func (b *Builder[E]) Err() error { return b.err }

// Plan returns the plan built so far, or the first recorded error.
func (b *Builder[E]) Plan() (*Plan, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.plan, nil
}

// Where applies the given predicates, AND-ed with the current conditions.
func (b *Builder[E]) Where(preds ...Pred[E]) *Builder[E] {
	for _, p := range preds {
		if p != nil {
			p(b)
		}
	}
	return b
}

// Eq adds a "column = v" condition.
func (b *Builder[E]) Eq(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpEQ, v)
}

// Ne adds a "column <> v" condition.
func (b *Builder[E]) Ne(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpNE, v)
}

// Gt adds a "column > v" condition.
func (b *Builder[E]) Gt(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpGT, v)
}

// Ge adds a "column >= v" condition.
func (b *Builder[E]) Ge(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpGE, v)
}

// Lt adds a "column < v" condition.
func (b *Builder[E]) Lt(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpLT, v)
}

// Le adds a "column <= v" condition.
func (b *Builder[E]) Le(col entity.Accessor[E], v any) *Builder[E] {
	return b.compare(col, OpLE, v)
}

// Like adds a "column like pattern" condition. The pattern is bound as is.
func (b *Builder[E]) Like(col entity.Accessor[E], pattern any) *Builder[E] {
	return b.compare(col, OpLike, pattern)
}

// NotLike adds a "column not like pattern" condition.
func (b *Builder[E]) NotLike(col entity.Accessor[E], pattern any) *Builder[E] {
	return b.compare(col, OpNotLike, pattern)
}

// In adds a "column in (...)" condition. values must be a slice or an array;
// a nil or empty collection adds nothing.
func (b *Builder[E]) In(col entity.Accessor[E], values any) *Builder[E] {
	return b.list(col, OpIn, values)
}

// NotIn adds a "column not in (...)" condition.
func (b *Builder[E]) NotIn(col entity.Accessor[E], values any) *Builder[E] {
	return b.list(col, OpNotIn, values)
}

// Between adds a "column between lo and hi" condition. It adds nothing
// unless both bounds are set.
func (b *Builder[E]) Between(col entity.Accessor[E], lo, hi any) *Builder[E] {
	return b.compare(col, OpBetween, lo, hi)
}

// NotBetween adds a "column not between lo and hi" condition.
func (b *Builder[E]) NotBetween(col entity.Accessor[E], lo, hi any) *Builder[E] {
	return b.compare(col, OpNotBetween, lo, hi)
}

// IsNull adds a "column is null" condition.
func (b *Builder[E]) IsNull(col entity.Accessor[E]) *Builder[E] {
	return b.compare(col, OpIsNull)
}

// IsNotNull adds a "column is not null" condition.
func (b *Builder[E]) IsNotNull(col entity.Accessor[E]) *Builder[E] {
	return b.compare(col, OpIsNotNull)
}

// And adds the conditions built by fn as one AND-ed group. Projection,
// ordering, pagination and assignments set inside fn apply to the plan.
func (b *Builder[E]) And(fn func(*Builder[E])) *Builder[E] {
	return b.nest(And, fn)
}

// Or adds the conditions built by fn as one group whose conditions are
// OR-ed. The group itself is AND-ed with the current conditions.
func (b *Builder[E]) Or(fn func(*Builder[E])) *Builder[E] {
	return b.nest(Or, fn)
}

// Select restricts the projection to the given columns. Without it every
// declared column is selected.
func (b *Builder[E]) Select(cols ...entity.Accessor[E]) *Builder[E] {
	projection := make([]*entity.Column, 0, len(cols))
	for _, a := range cols {
		c, ok := b.resolve(a)
		if !ok {
			return b
		}
		projection = append(projection, c)
	}
	b.plan.Projection = projection
	return b
}

// OrderByAsc appends ascending sort keys.
func (b *Builder[E]) OrderByAsc(cols ...entity.Accessor[E]) *Builder[E] {
	return b.order(true, cols)
}

// OrderByDesc appends descending sort keys.
func (b *Builder[E]) OrderByDesc(cols ...entity.Accessor[E]) *Builder[E] {
	return b.order(false, cols)
}

// Limit sets the maximum number of rows.
func (b *Builder[E]) Limit(n int) *Builder[E] {
	if n < 0 {
		b.fail(querykit.NewValidationError("limit", fmt.Errorf("negative limit %d", n)))
		return b
	}
	b.plan.Limit = &n
	return b
}

// Offset sets the number of rows to skip.
func (b *Builder[E]) Offset(n int) *Builder[E] {
	if n < 0 {
		b.fail(querykit.NewValidationError("offset", fmt.Errorf("negative offset %d", n)))
		return b
	}
	b.plan.Offset = &n
	return b
}

// Page selects the 1-based page n of the given size.
func (b *Builder[E]) Page(n, size int) *Builder[E] {
	if n < 1 || size < 1 {
		b.fail(querykit.NewValidationError("page", fmt.Errorf("%w: page %d, size %d", querykit.ErrInvalidPage, n, size)))
		return b
	}
	offset := (n - 1) * size
	b.plan.Offset = &offset
	b.plan.Limit = &size
	return b
}

// Set adds an assignment used by update statements. Unlike conditions,
// a nil value assigns NULL.
func (b *Builder[E]) Set(col entity.Accessor[E], v any) *Builder[E] {
	c, ok := b.resolve(col)
	if !ok {
		return b
	}
	v = indirect(v)
	for i := range b.plan.Set {
		if b.plan.Set[i].Column == c {
			b.plan.Set[i].Value = v
			return b
		}
	}
	b.plan.Set = append(b.plan.Set, Assignment{Column: c, Value: v})
	return b
}

// Clear resets conditions, projection, ordering, pagination, assignments
// and the recorded error. The table is kept. Inside And or Or, Clear only
// drops the conditions added to the group.
func (b *Builder[E]) Clear() *Builder[E] {
	if b.group != b.plan.Where {
		b.group.Children = nil
		return b
	}
	b.plan.Clear()
	b.group = b.plan.Where
	b.err = nil
	return b
}

func (b *Builder[E]) compare(col entity.Accessor[E], op Op, values ...any) *Builder[E] {
	c, ok := b.resolve(col)
	if !ok {
		return b
	}
	for i, v := range values {
		if isNil(v) {
			return b
		}
		values[i] = indirect(v)
	}
	b.group.Children = append(b.group.Children, Leaf(c, op, values...))
	return b
}

func (b *Builder[E]) list(col entity.Accessor[E], op Op, values any) *Builder[E] {
	c, ok := b.resolve(col)
	if !ok || isNil(values) {
		return b
	}
	rv := reflect.ValueOf(values)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		b.fail(querykit.NewValidationError(op.String(), fmt.Errorf("expect a slice or an array, got %T", values)))
		return b
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		b.fail(querykit.NewValidationError(op.String(), errors.New("byte slices are not value lists")))
		return b
	}
	if rv.Len() == 0 {
		return b
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = indirect(rv.Index(i).Interface())
	}
	b.group.Children = append(b.group.Children, Leaf(c, op, list...))
	return b
}

func (b *Builder[E]) nest(conn Connective, fn func(*Builder[E])) *Builder[E] {
	if fn == nil || b.err != nil {
		return b
	}
	sub := &Builder[E]{plan: b.plan, group: Group(conn)}
	fn(sub)
	if sub.err != nil {
		b.fail(sub.err)
		return b
	}
	if !sub.group.Empty() {
		b.group.Children = append(b.group.Children, sub.group)
	}
	return b
}

func (b *Builder[E]) order(asc bool, cols []entity.Accessor[E]) *Builder[E] {
	for _, a := range cols {
		c, ok := b.resolve(a)
		if !ok {
			return b
		}
		b.plan.Order = append(b.plan.Order, OrderSpec{Column: c, Asc: asc})
	}
	return b
}

func (b *Builder[E]) resolve(a entity.Accessor[E]) (*entity.Column, bool) {
	if b.err != nil {
		return nil, false
	}
	c, err := entity.Resolve[E](a)
	if err != nil {
		b.fail(err)
		return nil, false
	}
	return c, true
}

func (b *Builder[E]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// indirect dereferences non-nil pointers to scalar values.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
