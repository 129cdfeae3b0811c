package sqlgen

import (
	"strconv"
	"strings"

	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/entity"
)

// builder accumulates statement text and its bind values.
type builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// WriteString appends s to the statement text.
func (b *builder) WriteString(s string) *builder {
	b.sb.WriteString(s)
	return b
}

// Byte appends c to the statement text.
func (b *builder) Byte(c byte) *builder {
	b.sb.WriteByte(c)
	return b
}

// Pad appends a space.
func (b *builder) Pad() *builder {
	return b.Byte(' ')
}

// Ident appends an identifier. Identifiers are validated before rendering.
func (b *builder) Ident(s string) *builder {
	return b.WriteString(s)
}

// Arg appends a placeholder for v, wrapped in a cast to the column type.
func (b *builder) Arg(c *entity.Column, v any) *builder {
	b.args = append(b.args, v)
	cast := TypeName(b.dialect, c.Type)
	if cast != "" {
		b.WriteString("cast(")
	}
	if b.dialect == dialect.Postgres {
		b.Byte('$').WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.Byte('?')
	}
	if cast != "" {
		b.WriteString(" as ").WriteString(cast).Byte(')')
	}
	return b
}

// Args appends a comma separated list of placeholders.
func (b *builder) Args(c *entity.Column, vs []any) *builder {
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(c, v)
	}
	return b
}

// Int appends a numeric literal.
func (b *builder) Int(n int) *builder {
	return b.WriteString(strconv.Itoa(n))
}

// String returns the statement text.
func (b *builder) String() string {
	return b.sb.String()
}
