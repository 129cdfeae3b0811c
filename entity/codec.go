package entity

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/syssam/querykit"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Value is an encoded column value.
type Value struct {
	Column *Column
	Value  any
}

// Mode selects which columns Encode emits.
type Mode uint8

const (
	// ForInsert drops an unset primary key and nil fields.
	ForInsert Mode = iota + 1
	// ForUpdate drops the primary key, immutable columns and nil fields.
	ForUpdate
	// ForAll emits every column, including nil ones.
	ForAll
)

// Codec maps rows to entities and entities to column values.
type Codec struct {
	log *slog.Logger
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithLogger sets the logger used to report values that were dropped while
// decoding nullable fields.
func WithLogger(l *slog.Logger) CodecOption {
	return func(c *Codec) {
		c.log = l
	}
}

// NewCodec returns a new Codec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

func (c *Codec) logger() *slog.Logger {
	if c.log != nil {
		return c.log
	}
	return slog.Default()
}

// Decode maps a row into a new E using the default codec.
func Decode[E any](row Row) (*E, error) {
	return DecodeWith[E](defaultCodec, row)
}

// DecodeWith maps a row into a new E.
func DecodeWith[E any](c *Codec, row Row) (*E, error) {
	info, err := Load[E]()
	if err != nil {
		return nil, err
	}
	rec := new(E)
	if err := c.DecodeInto(info, row, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeInto maps a row into rec, a pointer to the entity described by info.
// Columns missing from the row keep their zero value. Unknown row columns
// are ignored.
func (c *Codec) DecodeInto(info *Info, row Row, rec any) error {
	for _, col := range info.Columns {
		src, ok := row[col.Name]
		if !ok {
			continue
		}
		fv, err := info.FieldValue(rec, col)
		if err != nil {
			return err
		}
		if err := c.decodeField(info, col, fv, src); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) decodeField(info *Info, col *Column, fv reflect.Value, src any) error {
	if src == nil {
		fv.SetZero()
		return nil
	}
	if !col.Nullable {
		if err := coerce(fv, col.Type, src); err != nil {
			return &querykit.MappingError{Entity: info.Name, Field: col.Field, Column: col.Name, Value: src, Err: err}
		}
		return nil
	}
	elem := reflect.New(fv.Type().Elem())
	if err := coerce(elem.Elem(), col.Type, src); err != nil {
		c.logger().Warn("querykit: dropping unmappable value",
			"entity", info.Name, "column", col.Name, "value_type", fmt.Sprintf("%T", src), "error", err)
		fv.SetZero()
		return nil
	}
	fv.Set(elem)
	return nil
}

// Encode returns the column values of rec using the default codec.
func Encode[E any](rec *E, mode Mode) ([]Value, error) {
	info, err := Load[E]()
	if err != nil {
		return nil, err
	}
	return defaultCodec.Encode(info, rec, mode)
}

// Encode returns the column values of rec, a pointer to the entity described
// by info, in column declaration order.
func (c *Codec) Encode(info *Info, rec any, mode Mode) ([]Value, error) {
	values := make([]Value, 0, len(info.Columns))
	for _, col := range info.Columns {
		fv, err := info.FieldValue(rec, col)
		if err != nil {
			return nil, err
		}
		switch {
		case mode == ForUpdate && (col.PK || col.Immutable):
			continue
		case mode == ForInsert && col.PK && fv.IsZero():
			continue
		}
		var v any
		if col.Nullable {
			if fv.IsNil() {
				if mode != ForAll {
					continue
				}
			} else {
				v = encodeValue(col, fv.Elem())
			}
		} else {
			v = encodeValue(col, fv)
		}
		values = append(values, Value{Column: col, Value: v})
	}
	return values, nil
}

// encodeValue converts named string types to plain strings so drivers and
// casts see a canonical representation.
func encodeValue(col *Column, fv reflect.Value) any {
	if col.Type == TypeEnum || (col.Type == TypeString && fv.Type() != reflect.TypeOf("")) {
		return fv.String()
	}
	return fv.Interface()
}

// AsRow converts encoded values to a Row.
func AsRow(values []Value) Row {
	row := make(Row, len(values))
	for _, v := range values {
		row[v.Column.Name] = v.Value
	}
	return row
}
