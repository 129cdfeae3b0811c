package query

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/querykit/entity"
)

// OrderSpec is one ORDER BY term.
type OrderSpec struct {
	Column *entity.Column `msgpack:"column"`
	Asc    bool           `msgpack:"asc"`
}

// Assignment is one SET term of an UPDATE.
type Assignment struct {
	Column *entity.Column `msgpack:"column"`
	Value  any            `msgpack:"value"`
}

// Plan is the dialect independent description of one statement.
type Plan struct {
	Table      string           `msgpack:"table"`
	Projection []*entity.Column `msgpack:"projection,omitempty"`
	Where      *Node            `msgpack:"where"`
	Order      []OrderSpec      `msgpack:"order,omitempty"`
	Limit      *int             `msgpack:"limit,omitempty"`
	Offset     *int             `msgpack:"offset,omitempty"`
	Set        []Assignment     `msgpack:"set,omitempty"`

	// Entity metadata used by INSERT and UPDATE rendering.
	PK         *entity.Column `msgpack:"pk,omitempty"`
	UpdateTime *entity.Column `msgpack:"update_time,omitempty"`
}

// NewPlan returns an empty plan on the given table.
func NewPlan(table string) *Plan {
	return &Plan{Table: table, Where: Group(And)}
}

// PlanOf returns an empty plan for entity type E.
func PlanOf[E any]() (*Plan, error) {
	info, err := entity.Load[E]()
	if err != nil {
		return nil, err
	}
	p := NewPlan(info.Table)
	p.PK = info.PK
	p.UpdateTime = info.UpdateTime
	return p, nil
}

// Clear resets the plan to its creation-time state. Table and entity
// metadata are kept.
func (p *Plan) Clear() {
	p.Projection = nil
	p.Where = Group(And)
	p.Order = nil
	p.Limit = nil
	p.Offset = nil
	p.Set = nil
}

// Clone returns a copy of the plan sharing columns and values.
func (p *Plan) Clone() *Plan {
	c := *p
	c.Projection = append([]*entity.Column(nil), p.Projection...)
	c.Where = cloneNode(p.Where)
	c.Order = append([]OrderSpec(nil), p.Order...)
	c.Set = append([]Assignment(nil), p.Set...)
	if p.Limit != nil {
		l := *p.Limit
		c.Limit = &l
	}
	if p.Offset != nil {
		o := *p.Offset
		c.Offset = &o
	}
	return &c
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Values = append([]any(nil), n.Values...)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = cloneNode(ch)
		}
	}
	return &c
}

// Encode serializes the plan with msgpack. Bind values keep their msgpack
// representation: integers may come back with a different width.
func (p *Plan) Encode() ([]byte, error) {
	buf, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("query: encode plan: %w", err)
	}
	return buf, nil
}

// DecodePlan deserializes a plan produced by Encode.
func DecodePlan(buf []byte) (*Plan, error) {
	p := &Plan{}
	if err := msgpack.Unmarshal(buf, p); err != nil {
		return nil, fmt.Errorf("query: decode plan: %w", err)
	}
	if p.Where == nil {
		p.Where = Group(And)
	}
	return p, nil
}
