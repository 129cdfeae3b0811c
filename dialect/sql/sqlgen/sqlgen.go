package sqlgen

import (
	"errors"
	"fmt"
	"time"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/entity"
	"github.com/syssam/querykit/query"
)

// Kind is the kind of statement rendered from a plan.
type Kind uint8

// Statement kinds.
const (
	Select Kind = iota + 1
	Count
	Exists
	Insert
	Update
	Delete
)

var kinds = [...]string{
	Select: "select",
	Count:  "count",
	Exists: "exists",
	Insert: "insert",
	Update: "update",
	Delete: "delete",
}

// String returns the statement kind name.
func (k Kind) String() string {
	if k > 0 && int(k) < len(kinds) {
		return kinds[k]
	}
	return "invalid"
}

// Statement is a rendered statement: SQL text and its positional bind
// values. The i-th value binds the i-th placeholder.
type Statement struct {
	Kind Kind
	SQL  string
	Args []any
	// Returning names the column an INSERT returns, if any.
	Returning string
	// GeneratedKey is set on INSERT statements of entities with an integer
	// primary key, the only keys a store can generate.
	GeneratedKey bool
}

// Generator renders plans into statements of one dialect. A Generator is
// safe for concurrent use.
type Generator struct {
	dialect string
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for update-time values.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New returns a Generator for the given dialect.
func New(dialect string, opts ...Option) *Generator {
	g := &Generator{
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dialect returns the dialect of the generator.
func (g *Generator) Dialect() string { return g.dialect }

// Render renders the plan as a statement of the given kind.
//
// INSERT and UPDATE take their column values from plan.Set. UPDATE never
// assigns the primary key or immutable columns, and assigns the update-time
// column the current time unless plan.Set holds it. UPDATE and DELETE
// refuse plans without conditions.
func (g *Generator) Render(plan *query.Plan, kind Kind) (*Statement, error) {
	if plan == nil {
		return nil, querykit.NewValidationError("plan", errors.New("nil plan"))
	}
	if !dialect.Valid(g.dialect) {
		return nil, querykit.NewValidationError("dialect", fmt.Errorf("unsupported dialect %q", g.dialect))
	}
	if !entity.ValidTable(plan.Table) {
		return nil, querykit.NewValidationError("table", fmt.Errorf("invalid table name %q", plan.Table))
	}
	b := &builder{dialect: g.dialect}
	var err error
	switch kind {
	case Select:
		err = g.selectStmt(b, plan)
	case Count:
		err = g.countStmt(b, plan)
	case Exists:
		err = g.existsStmt(b, plan)
	case Insert:
		err = g.insertStmt(b, plan)
	case Update:
		err = g.updateStmt(b, plan)
	case Delete:
		err = g.deleteStmt(b, plan)
	default:
		err = querykit.NewValidationError("kind", fmt.Errorf("unknown statement kind %d", kind))
	}
	if err != nil {
		return nil, err
	}
	stmt := &Statement{Kind: kind, SQL: b.String(), Args: b.args}
	if kind == Insert && generatesKey(plan) {
		stmt.GeneratedKey = true
		if g.dialect == dialect.Postgres {
			stmt.Returning = plan.PK.Name
		}
	}
	return stmt, nil
}

func (g *Generator) selectStmt(b *builder, p *query.Plan) error {
	b.WriteString("select ")
	if len(p.Projection) == 0 {
		b.Byte('*')
	}
	for i, c := range p.Projection {
		if err := checkColumn(c); err != nil {
			return err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name)
	}
	b.WriteString(" from ").Ident(p.Table)
	if err := where(b, p.Where); err != nil {
		return err
	}
	if len(p.Order) > 0 {
		b.WriteString(" order by ")
		for i, o := range p.Order {
			if err := checkColumn(o.Column); err != nil {
				return err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(o.Column.Name)
			if o.Asc {
				b.WriteString(" asc")
			} else {
				b.WriteString(" desc")
			}
		}
	}
	g.paginate(b, p.Limit, p.Offset)
	return nil
}

func (g *Generator) countStmt(b *builder, p *query.Plan) error {
	b.WriteString("select count(*) from ").Ident(p.Table)
	return where(b, p.Where)
}

func (g *Generator) existsStmt(b *builder, p *query.Plan) error {
	b.WriteString("select 1 from ").Ident(p.Table)
	if err := where(b, p.Where); err != nil {
		return err
	}
	one := 1
	g.paginate(b, &one, nil)
	return nil
}

func (g *Generator) insertStmt(b *builder, p *query.Plan) error {
	b.WriteString("insert into ").Ident(p.Table)
	if len(p.Set) == 0 {
		if g.dialect == dialect.MySQL {
			b.WriteString(" () values ()")
		} else {
			b.WriteString(" default values")
		}
	} else {
		b.WriteString(" (")
		for i, a := range p.Set {
			if err := checkColumn(a.Column); err != nil {
				return err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(a.Column.Name)
		}
		b.WriteString(") values (")
		for i, a := range p.Set {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Arg(a.Column, a.Value)
		}
		b.Byte(')')
	}
	if g.dialect == dialect.Postgres && generatesKey(p) {
		if err := checkColumn(p.PK); err != nil {
			return err
		}
		b.WriteString(" returning ").Ident(p.PK.Name)
	}
	return nil
}

func (g *Generator) updateStmt(b *builder, p *query.Plan) error {
	if p.Where.Empty() {
		return querykit.NewValidationError("update", querykit.ErrUnconditional)
	}
	set := make([]query.Assignment, 0, len(p.Set)+1)
	hasUpdateTime := false
	for _, a := range p.Set {
		if err := checkColumn(a.Column); err != nil {
			return err
		}
		if a.Column.PK || a.Column.Immutable || p.PK != nil && a.Column.Name == p.PK.Name {
			continue
		}
		if p.UpdateTime != nil && a.Column.Name == p.UpdateTime.Name {
			hasUpdateTime = true
		}
		set = append(set, a)
	}
	if p.UpdateTime != nil && !hasUpdateTime {
		if err := checkColumn(p.UpdateTime); err != nil {
			return err
		}
		set = append(set, query.Assignment{Column: p.UpdateTime, Value: g.now()})
	}
	if len(set) == 0 {
		return querykit.NewValidationError("update", errors.New("no columns to update"))
	}
	b.WriteString("update ").Ident(p.Table).WriteString(" set ")
	for i, a := range set {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(a.Column.Name).WriteString(" = ").Arg(a.Column, a.Value)
	}
	return where(b, p.Where)
}

func (g *Generator) deleteStmt(b *builder, p *query.Plan) error {
	if p.Where.Empty() {
		return querykit.NewValidationError("delete", querykit.ErrUnconditional)
	}
	b.WriteString("delete from ").Ident(p.Table)
	return where(b, p.Where)
}

// generatesKey reports whether inserting the plan may produce a key.
func generatesKey(p *query.Plan) bool {
	return p.PK != nil && p.PK.Type == entity.TypeInt
}

// paginate appends the pagination clause of the dialect.
func (g *Generator) paginate(b *builder, limit, offset *int) {
	if limit == nil && offset == nil {
		return
	}
	switch g.dialect {
	case dialect.Postgres:
		if offset != nil {
			b.WriteString(" offset ").Int(*offset).WriteString(" rows")
		}
		if limit != nil {
			b.WriteString(" fetch next ").Int(*limit).WriteString(" rows only")
		}
	default:
		switch {
		case limit != nil:
			b.WriteString(" limit ").Int(*limit)
		case g.dialect == dialect.MySQL:
			// MySQL has no offset without limit.
			b.WriteString(" limit 18446744073709551615")
		default:
			b.WriteString(" limit -1")
		}
		if offset != nil {
			b.WriteString(" offset ").Int(*offset)
		}
	}
}

// where appends the WHERE clause, if the predicate has conditions.
func where(b *builder, n *query.Node) error {
	if n.Empty() {
		return nil
	}
	b.WriteString(" where ")
	return predicate(b, n, true)
}

func predicate(b *builder, n *query.Node, root bool) error {
	if n.IsLeaf() {
		return leaf(b, n)
	}
	children := make([]*query.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if !c.Empty() {
			children = append(children, c)
		}
	}
	if !root {
		b.Byte('(')
	}
	for i, c := range children {
		if i > 0 {
			b.Pad().WriteString(n.Connective.String()).Pad()
		}
		if err := predicate(b, c, false); err != nil {
			return err
		}
	}
	if !root {
		b.Byte(')')
	}
	return nil
}

func leaf(b *builder, n *query.Node) error {
	if err := checkColumn(n.Column); err != nil {
		return err
	}
	arity := func(want int) error {
		if len(n.Values) != want {
			return querykit.NewValidationError(n.Op.String(),
				fmt.Errorf("column %s: expect %d values, got %d", n.Column.Name, want, len(n.Values)))
		}
		return nil
	}
	b.Ident(n.Column.Name).Pad()
	switch n.Op {
	case query.OpEQ, query.OpNE, query.OpGT, query.OpGE, query.OpLT, query.OpLE, query.OpLike, query.OpNotLike:
		if err := arity(1); err != nil {
			return err
		}
		b.WriteString(n.Op.String()).Pad().Arg(n.Column, n.Values[0])
	case query.OpIn, query.OpNotIn:
		if len(n.Values) == 0 {
			return querykit.NewValidationError(n.Op.String(), fmt.Errorf("column %s: empty value list", n.Column.Name))
		}
		b.WriteString(n.Op.String()).WriteString(" (").Args(n.Column, n.Values).Byte(')')
	case query.OpBetween, query.OpNotBetween:
		if err := arity(2); err != nil {
			return err
		}
		b.WriteString(n.Op.String()).Pad().Arg(n.Column, n.Values[0]).WriteString(" and ").Arg(n.Column, n.Values[1])
	case query.OpIsNull, query.OpIsNotNull:
		if err := arity(0); err != nil {
			return err
		}
		b.WriteString(n.Op.String())
	default:
		return querykit.NewValidationError("operator", fmt.Errorf("column %s: unknown operator %d", n.Column.Name, n.Op))
	}
	return nil
}

func checkColumn(c *entity.Column) error {
	if c == nil {
		return querykit.NewValidationError("column", errors.New("nil column"))
	}
	if !entity.ValidColumn(c.Name) {
		return querykit.NewValidationError("column", fmt.Errorf("invalid column name %q", c.Name))
	}
	return nil
}
