// Package querykit builds type-checked SQL queries from Go struct field
// accessors and executes them asynchronously over a database/sql pool.
//
// The module is layered leaves-first:
//
//   - entity: resolves typed field accessors to column descriptors, reads
//     entity metadata from struct tags and maps rows to structs.
//   - query: the fluent predicate builder and the statement plan.
//   - dialect/sql/sqlgen: renders a plan into SQL text with positional
//     bind values.
//   - executor: runs statements against the pool and returns futures.
//   - repository: CRUD operations on top of the layers above.
//
// # Entities
//
//	type User struct {
//	    ID         int64      `db:"id,pk"`
//	    Name       string     `db:"name"`
//	    Age        int        `db:"age"`
//	    Balance    decimal.Decimal
//	    Verified   bool
//	    CreateTime time.Time  `db:"create_time,immutable"`
//	    UpdateTime *time.Time `db:"update_time,updatetime"`
//	}
//
//	var (
//	    UserAge      = entity.Of(func(u *User) *int { return &u.Age })
//	    UserBalance  = entity.Of(func(u *User) *decimal.Decimal { return &u.Balance })
//	    UserVerified = entity.Of(func(u *User) *bool { return &u.Verified })
//	)
//
// # Queries
//
//	users, err := repo.Find(ctx, repo.Query().
//	    And(func(b *query.Builder[User]) {
//	        b.Ge(UserAge, 18).Or(func(b *query.Builder[User]) {
//	            b.Ge(UserBalance, decimal.NewFromInt(1000)).Eq(UserVerified, true)
//	        })
//	    }).
//	    OrderByDesc(UserAge).
//	    Limit(20))
//
// # Errors
//
// Every error returned by the module belongs to one of four kinds, reported by
// KindOf: resolution, validation, mapping and execution.
package querykit
