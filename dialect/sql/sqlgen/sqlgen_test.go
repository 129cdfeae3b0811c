package sqlgen_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/dialect/sql/sqlgen"
	"github.com/syssam/querykit/entity"
	"github.com/syssam/querykit/query"
)

type Account struct {
	ID         int64
	Name       string
	Age        int
	Balance    decimal.Decimal
	Verified   bool
	Email      *string
	CreateTime time.Time
	UpdateTime time.Time
}

type Tag struct {
	ID    int64
	Label string
}

type Label struct {
	ID   uuid.UUID
	Name string
}

var (
	AccountID         = entity.Of(func(a *Account) *int64 { return &a.ID })
	AccountName       = entity.Of(func(a *Account) *string { return &a.Name })
	AccountAge        = entity.Of(func(a *Account) *int { return &a.Age })
	AccountBalance    = entity.Of(func(a *Account) *decimal.Decimal { return &a.Balance })
	AccountVerified   = entity.Of(func(a *Account) *bool { return &a.Verified })
	AccountEmail      = entity.Of(func(a *Account) **string { return &a.Email })
	AccountCreateTime = entity.Of(func(a *Account) *time.Time { return &a.CreateTime })
	AccountUpdateTime = entity.Of(func(a *Account) *time.Time { return &a.UpdateTime })

	LabelID   = entity.Of(func(l *Label) *uuid.UUID { return &l.ID })
	LabelName = entity.Of(func(l *Label) *string { return &l.Name })
)

var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func accounts() *query.Builder[Account] { return query.For[Account]() }

func mustPlan(t *testing.T, b *query.Builder[Account]) *query.Plan {
	t.Helper()
	p, err := b.Plan()
	require.NoError(t, err)
	return p
}

func mustRender(t *testing.T, g *sqlgen.Generator, p *query.Plan, kind sqlgen.Kind) *sqlgen.Statement {
	t.Helper()
	stmt, err := g.Render(p, kind)
	require.NoError(t, err)
	return stmt
}

func TestRenderGolden(t *testing.T) {
	cases := []struct {
		name    string
		kind    sqlgen.Kind
		builder func() *query.Builder[Account]
	}{
		{
			name: "select_nested",
			kind: sqlgen.Select,
			builder: func() *query.Builder[Account] {
				return accounts().
					Select(AccountID, AccountName).
					And(func(s *query.Builder[Account]) {
						s.Ge(AccountAge, 18).Or(func(s2 *query.Builder[Account]) {
							s2.Ge(AccountBalance, decimal.NewFromInt(1000)).Eq(AccountVerified, true)
						})
					}).
					OrderByDesc(AccountID).
					OrderByAsc(AccountName).
					Page(3, 15)
			},
		},
		{
			name: "count",
			kind: sqlgen.Count,
			builder: func() *query.Builder[Account] {
				return accounts().
					Like(AccountName, "a%").
					In(AccountID, []int64{1, 2, 3}).
					OrderByAsc(AccountID).
					Limit(3)
			},
		},
		{
			name: "exists",
			kind: sqlgen.Exists,
			builder: func() *query.Builder[Account] {
				return accounts().Eq(AccountName, "x")
			},
		},
		{
			name: "insert",
			kind: sqlgen.Insert,
			builder: func() *query.Builder[Account] {
				return accounts().Set(AccountName, "alice").Set(AccountAge, 30)
			},
		},
		{
			name:    "insert_default",
			kind:    sqlgen.Insert,
			builder: accounts,
		},
		{
			name: "update",
			kind: sqlgen.Update,
			builder: func() *query.Builder[Account] {
				return accounts().
					Set(AccountName, "bob").
					Set(AccountID, 9).
					Set(AccountCreateTime, now).
					Eq(AccountID, 7)
			},
		},
		{
			name: "delete",
			kind: sqlgen.Delete,
			builder: func() *query.Builder[Account] {
				return accounts().
					Between(AccountAge, 18, 30).
					IsNull(AccountEmail).
					NotIn(AccountID, []int64{5})
			},
		},
		{
			name: "offset_only",
			kind: sqlgen.Select,
			builder: func() *query.Builder[Account] {
				return accounts().Offset(20)
			},
		},
		{
			name: "limit_only",
			kind: sqlgen.Select,
			builder: func() *query.Builder[Account] {
				return accounts().Limit(5)
			},
		},
	}
	for _, d := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite} {
		t.Run(d, func(t *testing.T) {
			g := sqlgen.New(d, sqlgen.WithClock(func() time.Time { return now }))
			var buf strings.Builder
			for _, tc := range cases {
				stmt, err := g.Render(mustPlan(t, tc.builder()), tc.kind)
				require.NoError(t, err, tc.name)
				assert.Equal(t, tc.kind, stmt.Kind)
				fmt.Fprintf(&buf, "-- %s\n%s\nargs: %v\n", tc.name, stmt.SQL, stmt.Args)
			}
			goldie.New(t).Assert(t, d, []byte(buf.String()))
		})
	}
}

func TestRenderEq(t *testing.T) {
	t.Parallel()

	g := sqlgen.New(dialect.MySQL)
	for _, v := range []any{"jack", "", "o'brien"} {
		stmt, err := g.Render(mustPlan(t, accounts().Eq(AccountName, v)), sqlgen.Select)
		require.NoError(t, err)
		assert.Equal(t, "select * from accounts where name = cast(? as char)", stmt.SQL)
		assert.Equal(t, []any{v}, stmt.Args)
	}
}

func TestRenderNilIsNoop(t *testing.T) {
	t.Parallel()

	var email *string
	g := sqlgen.New(dialect.Postgres)
	stmt, err := g.Render(mustPlan(t, accounts().Eq(AccountEmail, email).In(AccountID, []int64{})), sqlgen.Select)
	require.NoError(t, err)
	assert.Equal(t, "select * from accounts", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestRenderInOrder(t *testing.T) {
	t.Parallel()

	g := sqlgen.New(dialect.Postgres)
	stmt, err := g.Render(mustPlan(t, accounts().In(AccountID, []int64{3, 1, 2})), sqlgen.Select)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(1), int64(2)}, stmt.Args)
	assert.Equal(t, 3, strings.Count(stmt.SQL, "cast("))
	assert.Contains(t, stmt.SQL, "$3")
	assert.NotContains(t, stmt.SQL, "$4")
}

func TestRenderClear(t *testing.T) {
	t.Parallel()

	b := accounts().Eq(AccountName, "a").OrderByAsc(AccountID).Limit(10)
	b.Clear()
	stmt, err := sqlgen.New(dialect.SQLite).Render(mustPlan(t, b), sqlgen.Select)
	require.NoError(t, err)
	assert.Equal(t, "select * from accounts", stmt.SQL)
}

func TestRenderUnconditional(t *testing.T) {
	t.Parallel()

	g := sqlgen.New(dialect.Postgres)
	for _, kind := range []sqlgen.Kind{sqlgen.Update, sqlgen.Delete} {
		var email *string
		_, err := g.Render(mustPlan(t, accounts().Eq(AccountEmail, email).Set(AccountName, "x")), kind)
		require.Error(t, err, kind.String())
		assert.True(t, querykit.IsValidationError(err))
		assert.ErrorIs(t, err, querykit.ErrUnconditional)
	}
}

func TestRenderUpdate(t *testing.T) {
	t.Parallel()

	g := sqlgen.New(dialect.SQLite, sqlgen.WithClock(func() time.Time { return now }))

	t.Run("caller_update_time", func(t *testing.T) {
		later := now.Add(time.Hour)
		stmt, err := g.Render(mustPlan(t, accounts().Set(AccountUpdateTime, later).Eq(AccountID, 1)), sqlgen.Update)
		require.NoError(t, err)
		assert.Equal(t, "update accounts set update_time = cast(? as text) where id = cast(? as integer)", stmt.SQL)
		assert.Equal(t, []any{later, 1}, stmt.Args)
	})

	t.Run("no_primary_key", func(t *testing.T) {
		stmt, err := g.Render(mustPlan(t, accounts().Set(AccountID, 2).Set(AccountAge, 3).Eq(AccountID, 1)), sqlgen.Update)
		require.NoError(t, err)
		assert.NotContains(t, stmt.SQL, "set id")
		assert.NotContains(t, stmt.SQL, ", id =")
	})

	t.Run("nothing_to_update", func(t *testing.T) {
		label := entity.Of(func(t *Tag) *string { return &t.Label })
		id := entity.Of(func(t *Tag) *int64 { return &t.ID })
		p, err := query.For[Tag]().Set(id, 5).Eq(label, "x").Plan()
		require.NoError(t, err)
		_, err = g.Render(p, sqlgen.Update)
		assert.True(t, querykit.IsValidationError(err))
	})
}

func TestRenderReturning(t *testing.T) {
	t.Parallel()

	p := mustPlan(t, accounts().Set(AccountName, "a"))
	stmt, err := sqlgen.New(dialect.Postgres).Render(p, sqlgen.Insert)
	require.NoError(t, err)
	assert.Equal(t, "id", stmt.Returning)

	assert.True(t, stmt.GeneratedKey)

	stmt, err = sqlgen.New(dialect.MySQL).Render(p, sqlgen.Insert)
	require.NoError(t, err)
	assert.Empty(t, stmt.Returning)
	assert.True(t, stmt.GeneratedKey)

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	lp, err := query.For[Label]().Set(LabelID, id).Set(LabelName, "go").Plan()
	require.NoError(t, err)
	for _, d := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite} {
		stmt, err = sqlgen.New(d).Render(lp, sqlgen.Insert)
		require.NoError(t, err)
		assert.NotContains(t, stmt.SQL, "returning", d)
		assert.Empty(t, stmt.Returning, d)
		assert.False(t, stmt.GeneratedKey, "uuid keys are never generated by the store")
	}
	assert.Equal(t, "insert into labels (id, name) values (cast($1 as uuid), cast($2 as text))",
		mustRender(t, sqlgen.New(dialect.Postgres), lp, sqlgen.Insert).SQL)
}

func TestRenderInvalid(t *testing.T) {
	t.Parallel()

	g := sqlgen.New(dialect.Postgres)

	_, err := g.Render(nil, sqlgen.Select)
	assert.True(t, querykit.IsValidationError(err))

	_, err = sqlgen.New("oracle").Render(mustPlan(t, accounts()), sqlgen.Select)
	assert.True(t, querykit.IsValidationError(err))

	_, err = g.Render(mustPlan(t, query.New[Account]("accounts; drop table x")), sqlgen.Select)
	assert.True(t, querykit.IsValidationError(err))

	_, err = g.Render(mustPlan(t, accounts()), sqlgen.Kind(42))
	assert.True(t, querykit.IsValidationError(err))

	p := mustPlan(t, accounts())
	p.Where.Children = append(p.Where.Children, query.Leaf(p.PK, query.OpBetween, 1))
	_, err = g.Render(p, sqlgen.Select)
	assert.True(t, querykit.IsValidationError(err))

	p = mustPlan(t, accounts())
	p.Where.Children = append(p.Where.Children, query.Leaf(&entity.Column{Name: "x y"}, query.OpIsNull))
	_, err = g.Render(p, sqlgen.Select)
	assert.True(t, querykit.IsValidationError(err))
}

func TestRenderDecodedPlan(t *testing.T) {
	t.Parallel()

	p := mustPlan(t, accounts().Eq(AccountName, "jack").Or(func(b *query.Builder[Account]) {
		b.Lt(AccountAge, 10).Gt(AccountAge, 90)
	}))
	buf, err := p.Encode()
	require.NoError(t, err)
	decoded, err := query.DecodePlan(buf)
	require.NoError(t, err)

	g := sqlgen.New(dialect.Postgres)
	want, err := g.Render(p, sqlgen.Select)
	require.NoError(t, err)
	got, err := g.Render(decoded, sqlgen.Select)
	require.NoError(t, err)
	assert.Equal(t, want.SQL, got.SQL)
	assert.Equal(t, "select * from accounts where name = cast($1 as text) and (age < cast($2 as bigint) or age > cast($3 as bigint))", got.SQL)
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "double precision", sqlgen.TypeName(dialect.Postgres, entity.TypeFloat))
	assert.Equal(t, "timestamptz", sqlgen.TypeName(dialect.Postgres, entity.TypeTime), "time values keep their zone")
	assert.Equal(t, "decimal(65,30)", sqlgen.TypeName(dialect.MySQL, entity.TypeDecimal))
	assert.Equal(t, "blob", sqlgen.TypeName(dialect.SQLite, entity.TypeBytes))
	assert.Empty(t, sqlgen.TypeName(dialect.SQLite, entity.TypeOther))
	assert.Equal(t, "update", sqlgen.Update.String())
}
