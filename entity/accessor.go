package entity

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/syssam/querykit"
)

// Accessor is a typed reference to a field of entity E. It is the
// compile-time checked stand-in for a column name.
type Accessor[E any] interface {
	// Resolve returns the column the accessor refers to.
	Resolve() (*Column, error)
	// String describes the accessor.
	String() string
}

// Field is an accessor to a field of type T of entity E.
//
// Fields are usually declared once per entity and reused:
//
//	var UserAge = entity.Of(func(u *User) *int { return &u.Age })
type Field[E, T any] struct {
	sel  func(*E) *T
	name string
}

// Of returns an accessor for the field addressed by sel. The selector must
// return the address of a field of its argument and have no side effects.
func Of[E, T any](sel func(*E) *T) Field[E, T] {
	return Field[E, T]{sel: sel}
}

// Named returns an accessor for the field with the given Go field name or
// column name.
func Named[E, T any](name string) Field[E, T] {
	return Field[E, T]{name: name}
}

// Resolve returns the column the field refers to.
func (f Field[E, T]) Resolve() (*Column, error) {
	return resolve[E](f.sel != nil, f.name, reflect.TypeFor[T](), f.offset, f.String)
}

// String describes the field.
func (f Field[E, T]) String() string {
	var (
		e E
		t T
	)
	if f.sel == nil {
		return fmt.Sprintf("%T.%s", e, f.name)
	}
	return fmt.Sprintf("func(*%T) *%T", e, t)
}

// offset returns the byte offset of the selected field within E.
func (f Field[E, T]) offset() (off uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("selector panicked: %v", r)
		}
	}()
	zero := new(E)
	p := f.sel(zero)
	if p == nil {
		return 0, errors.New("selector returned nil")
	}
	base := uintptr(unsafe.Pointer(zero))
	addr := uintptr(unsafe.Pointer(p))
	if addr < base || addr >= base+unsafe.Sizeof(*zero) {
		return 0, errors.New("selector does not address a field of its argument")
	}
	return addr - base, nil
}

// accessorKey is the stable identity of an accessor.
type accessorKey struct {
	entity reflect.Type
	field  reflect.Type
	offset uintptr
	name   string
}

// resolved caches *Column by accessorKey. It only grows, bounded by the
// number of distinct accessors in the program.
var resolved sync.Map

func resolve[E any](bySelector bool, name string, ft reflect.Type, offset func() (uintptr, error), describe func() string) (*Column, error) {
	et := reflect.TypeFor[E]()
	key := accessorKey{entity: et, field: ft}
	if bySelector {
		off, err := offset()
		if err != nil {
			return nil, querykit.NewResolutionError(et.String(), describe(), err)
		}
		key.offset = off
	} else {
		if name == "" {
			return nil, querykit.NewResolutionError(et.String(), describe(), errors.New("empty field name"))
		}
		key.name = name
	}
	if c, ok := resolved.Load(key); ok {
		return c.(*Column), nil
	}
	info, err := LoadType(et)
	if err != nil {
		return nil, querykit.NewResolutionError(et.String(), describe(), err)
	}
	var col *Column
	if bySelector {
		for _, c := range info.Columns {
			if c.offset == key.offset && c.goType == ft {
				col = c
				break
			}
		}
		if col == nil {
			return nil, querykit.NewResolutionError(et.String(), describe(),
				fmt.Errorf("no declared column at offset %d with type %s", key.offset, ft))
		}
	} else {
		c, ok := info.Column(name)
		if !ok {
			return nil, querykit.NewResolutionError(et.String(), describe(), fmt.Errorf("no declared column %q", name))
		}
		if c.goType != ft {
			return nil, querykit.NewResolutionError(et.String(), describe(),
				fmt.Errorf("column %q has type %s, not %s", name, c.goType, ft))
		}
		col = c
	}
	v, _ := resolved.LoadOrStore(key, col)
	return v.(*Column), nil
}

// Resolve resolves an accessor of entity E.
func Resolve[E any](a Accessor[E]) (*Column, error) {
	if a == nil {
		var e E
		return nil, querykit.NewResolutionError(fmt.Sprintf("%T", e), "<nil>", errors.New("nil accessor"))
	}
	return a.Resolve()
}
