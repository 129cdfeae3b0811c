package query

import "github.com/syssam/querykit/entity"

// Pred is a condition on entity E. Preds are applied with Builder.Where.
type Pred[E any] func(*Builder[E])

// EQ returns a predicate that checks if the field is equal to v.
func EQ[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Eq(f, v) }
}

// NEQ returns a predicate that checks if the field is not equal to v.
func NEQ[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Ne(f, v) }
}

// GT returns a predicate that checks if the field is greater than v.
func GT[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Gt(f, v) }
}

// GTE returns a predicate that checks if the field is greater than or equal to v.
func GTE[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Ge(f, v) }
}

// LT returns a predicate that checks if the field is less than v.
func LT[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Lt(f, v) }
}

// LTE returns a predicate that checks if the field is less than or equal to v.
func LTE[E, T any](f entity.Field[E, T], v T) Pred[E] {
	return func(b *Builder[E]) { b.Le(f, v) }
}

// In returns a predicate that checks if the field is one of vs.
func In[E, T any](f entity.Field[E, T], vs ...T) Pred[E] {
	return func(b *Builder[E]) { b.In(f, vs) }
}

// NotIn returns a predicate that checks if the field is none of vs.
func NotIn[E, T any](f entity.Field[E, T], vs ...T) Pred[E] {
	return func(b *Builder[E]) { b.NotIn(f, vs) }
}

// Between returns a predicate that checks if the field is within [lo, hi].
func Between[E, T any](f entity.Field[E, T], lo, hi T) Pred[E] {
	return func(b *Builder[E]) { b.Between(f, lo, hi) }
}

// Like returns a predicate that matches the field against a pattern.
func Like[E any](f entity.Field[E, string], pattern string) Pred[E] {
	return func(b *Builder[E]) { b.Like(f, pattern) }
}

// IsNull returns a predicate that checks if the field is null.
func IsNull[E, T any](f entity.Field[E, T]) Pred[E] {
	return func(b *Builder[E]) { b.IsNull(f) }
}

// NotNull returns a predicate that checks if the field is not null.
func NotNull[E, T any](f entity.Field[E, T]) Pred[E] {
	return func(b *Builder[E]) { b.IsNotNull(f) }
}

// AndPreds groups predicates with AND.
func AndPreds[E any](preds ...Pred[E]) Pred[E] {
	return func(b *Builder[E]) {
		b.And(func(s *Builder[E]) { s.Where(preds...) })
	}
}

// OrPreds groups predicates with OR.
func OrPreds[E any](preds ...Pred[E]) Pred[E] {
	return func(b *Builder[E]) {
		b.Or(func(s *Builder[E]) { s.Where(preds...) })
	}
}
