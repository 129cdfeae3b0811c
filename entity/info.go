package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/syssam/querykit"
)

// TableNamer is implemented by entities that declare their table name.
type TableNamer interface {
	TableName() string
}

// Column describes how one struct field maps to a table column.
// A Column is immutable once its entity is loaded.
type Column struct {
	// Field is the logical (Go) field name.
	Field string `msgpack:"field"`
	// Name is the column name.
	Name string `msgpack:"name"`
	// Type is the declared semantic type.
	Type SemanticType `msgpack:"type"`
	// Nullable is set for pointer fields.
	Nullable bool `msgpack:"nullable,omitempty"`
	// PK marks the primary key column.
	PK bool `msgpack:"pk,omitempty"`
	// Immutable columns are never part of an UPDATE.
	Immutable bool `msgpack:"immutable,omitempty"`
	// UpdateTime marks the column holding the last update time.
	UpdateTime bool `msgpack:"update_time,omitempty"`

	index  []int
	offset uintptr
	goType reflect.Type
}

// String returns the column name.
func (c *Column) String() string { return c.Name }

// GoType returns the Go type of the struct field.
func (c *Column) GoType() reflect.Type { return c.goType }

// Info holds the metadata of an entity type. It is read once per type and
// cached for the lifetime of the process.
type Info struct {
	// Name is the Go type name.
	Name string
	// Table is the table name.
	Table string
	// Columns lists the columns in field declaration order.
	Columns []*Column
	// PK is the primary key column, or nil.
	PK *Column
	// UpdateTime is the update-time column, or nil.
	UpdateTime *Column

	typ     reflect.Type
	byField map[string]*Column
	byName  map[string]*Column
}

// infos caches *Info by entity reflect.Type.
var infos sync.Map

// Load returns the metadata of entity type E.
func Load[E any]() (*Info, error) {
	return LoadType(reflect.TypeFor[E]())
}

// LoadType returns the metadata of the given struct type.
func LoadType(t reflect.Type) (*Info, error) {
	if v, ok := infos.Load(t); ok {
		return v.(*Info), nil
	}
	info, err := newInfo(t)
	if err != nil {
		return nil, err
	}
	v, _ := infos.LoadOrStore(t, info)
	return v.(*Info), nil
}

// Type returns the entity struct type.
func (i *Info) Type() reflect.Type { return i.typ }

// Column returns the column with the given column name or Go field name.
func (i *Info) Column(name string) (*Column, bool) {
	if c, ok := i.byName[name]; ok {
		return c, true
	}
	c, ok := i.byField[name]
	return c, ok
}

// ColumnNames returns all column names in declaration order.
func (i *Info) ColumnNames() []string {
	names := make([]string, len(i.Columns))
	for j, c := range i.Columns {
		names[j] = c.Name
	}
	return names
}

// FieldValue returns the struct field of rec holding column c.
// rec must be a pointer to the entity.
func (i *Info) FieldValue(rec any, c *Column) (reflect.Value, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != i.typ {
		return reflect.Value{}, fmt.Errorf("expected *%s, got %T", i.Name, rec)
	}
	return v.Elem().FieldByIndex(c.index), nil
}

// ID returns the primary key value of rec and whether it is set (non-zero).
func (i *Info) ID(rec any) (any, bool, error) {
	if i.PK == nil {
		return nil, false, fmt.Errorf("entity %s has no primary key", i.Name)
	}
	fv, err := i.FieldValue(rec, i.PK)
	if err != nil {
		return nil, false, err
	}
	if fv.IsZero() {
		return nil, false, nil
	}
	if fv.Kind() == reflect.Pointer {
		return fv.Elem().Interface(), true, nil
	}
	return fv.Interface(), true, nil
}

// SetID stores a generated integer id into the primary key of rec. Non-integer
// keys are left untouched and SetID reports false.
func (i *Info) SetID(rec any, id int64) (bool, error) {
	if i.PK == nil || id <= 0 {
		return false, nil
	}
	fv, err := i.FieldValue(rec, i.PK)
	if err != nil {
		return false, err
	}
	if fv.Kind() == reflect.Pointer {
		if i.PK.Type != TypeInt {
			return false, nil
		}
		fv.Set(reflect.New(fv.Type().Elem()))
		fv = fv.Elem()
	}
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fv.OverflowInt(id) {
			return false, fmt.Errorf("generated id %d overflows %s", id, fv.Type())
		}
		fv.SetInt(id)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if fv.OverflowUint(uint64(id)) {
			return false, fmt.Errorf("generated id %d overflows %s", id, fv.Type())
		}
		fv.SetUint(uint64(id))
	default:
		return false, nil
	}
	return true, nil
}

// fieldTag is the parsed form of a `db:"name,opt,..."` tag.
type fieldTag struct {
	name       string
	skip       bool
	pk         bool
	immutable  bool
	updateTime bool
}

func parseTag(tag string) (fieldTag, error) {
	if tag == "-" {
		return fieldTag{skip: true}, nil
	}
	parts := strings.Split(tag, ",")
	ft := fieldTag{name: strings.TrimSpace(parts[0])}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "pk":
			ft.pk = true
		case "immutable":
			ft.immutable = true
		case "updatetime":
			ft.updateTime = true
		case "":
		default:
			return ft, fmt.Errorf("unknown tag option %q", opt)
		}
	}
	return ft, nil
}

func newInfo(t reflect.Type) (*Info, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, querykit.NewValidationError("entity", fmt.Errorf("%v is not a struct type", t))
	}
	info := &Info{
		Name:    t.Name(),
		Table:   TableOf(t.Name()),
		typ:     t,
		byField: make(map[string]*Column),
		byName:  make(map[string]*Column),
	}
	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		info.Table = tn.TableName()
	}
	if !ValidTable(info.Table) {
		return nil, querykit.NewValidationError("entity", fmt.Errorf("%s: invalid table name %q", info.Name, info.Table))
	}
	if err := info.addFields(t, nil, 0); err != nil {
		return nil, querykit.NewValidationError("entity", fmt.Errorf("%s: %w", info.Name, err))
	}
	if len(info.Columns) == 0 {
		return nil, querykit.NewValidationError("entity", fmt.Errorf("%s has no columns", info.Name))
	}
	if info.PK == nil {
		for _, c := range info.Columns {
			if c.Field == "ID" || c.Name == "id" {
				c.PK = true
				info.PK = c
				break
			}
		}
	}
	if info.UpdateTime == nil {
		for _, c := range info.Columns {
			if c.Type == TypeTime && (c.Name == "update_time" || c.Name == "updated_at") {
				c.UpdateTime = true
				info.UpdateTime = c
				break
			}
		}
	}
	return info, nil
}

// addFields flattens the exported fields of t, descending into embedded structs.
func (i *Info) addFields(t reflect.Type, index []int, offset uintptr) error {
	for j := 0; j < t.NumField(); j++ {
		sf := t.Field(j)
		idx := append(append([]int(nil), index...), j)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("db") == "" {
			if st, _ := TypeOf(sf.Type); st == TypeOther {
				if err := i.addFields(sf.Type, idx, offset+sf.Offset); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		tag, err := parseTag(sf.Tag.Get("db"))
		if err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
		if tag.skip {
			continue
		}
		c := &Column{
			Field:      sf.Name,
			Name:       tag.name,
			PK:         tag.pk,
			Immutable:  tag.immutable,
			UpdateTime: tag.updateTime,
			index:      idx,
			offset:     offset + sf.Offset,
			goType:     sf.Type,
		}
		if c.Name == "" {
			c.Name = Snake(sf.Name)
		}
		if !ValidColumn(c.Name) {
			return fmt.Errorf("field %s: invalid column name %q", sf.Name, c.Name)
		}
		c.Type, c.Nullable = TypeOf(sf.Type)
		if c.Name == "create_time" || c.Name == "created_at" {
			c.Immutable = true
		}
		if _, ok := i.byName[c.Name]; ok {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		switch {
		case c.PK && i.PK != nil:
			return errors.New("multiple primary keys")
		case c.PK:
			i.PK = c
		}
		if c.UpdateTime {
			if c.Type != TypeTime {
				return fmt.Errorf("field %s: updatetime requires a time field", sf.Name)
			}
			if i.UpdateTime != nil {
				return errors.New("multiple update-time columns")
			}
			i.UpdateTime = c
		}
		i.Columns = append(i.Columns, c)
		i.byName[c.Name] = c
		i.byField[c.Field] = c
	}
	return nil
}
