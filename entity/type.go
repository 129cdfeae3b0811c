package entity

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SemanticType is the declared type of a column, independent of the Go field
// type that carries it. It drives both bind-value casts and row coercion.
type SemanticType uint8

// Semantic types.
const (
	TypeOther SemanticType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeDecimal
	TypeBool
	TypeTime
	TypeUUID
	TypeEnum
	TypeBytes
)

var typeNames = [...]string{
	TypeOther:   "other",
	TypeString:  "string",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeDecimal: "decimal",
	TypeBool:    "bool",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeEnum:    "enum",
	TypeBytes:   "bytes",
}

// String returns the type name.
func (t SemanticType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// Numeric reports whether the type holds numbers.
func (t SemanticType) Numeric() bool {
	return t == TypeInt || t == TypeFloat || t == TypeDecimal
}

// Enum is implemented by string types with a closed set of values.
//
//	type Status string
//
//	func (Status) Values() []string { return []string{"active", "blocked"} }
type Enum interface {
	Values() []string
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	bytesType   = reflect.TypeOf([]byte(nil))
	enumType    = reflect.TypeOf((*Enum)(nil)).Elem()
)

// TypeOf returns the semantic type of a Go type. Pointer types are nullable and
// resolve to the semantic type of their element.
func TypeOf(t reflect.Type) (st SemanticType, nullable bool) {
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	switch {
	case t == timeType:
		return TypeTime, nullable
	case t == uuidType:
		return TypeUUID, nullable
	case t == decimalType:
		return TypeDecimal, nullable
	case t == bytesType:
		return TypeBytes, nullable
	case t.Kind() == reflect.String && t.Implements(enumType):
		return TypeEnum, nullable
	}
	switch t.Kind() {
	case reflect.String:
		return TypeString, nullable
	case reflect.Bool:
		return TypeBool, nullable
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, nullable
	case reflect.Float32, reflect.Float64:
		return TypeFloat, nullable
	}
	return TypeOther, nullable
}

// enumValues returns the allowed values of an enum type.
func enumValues(t reflect.Type) []string {
	e, ok := reflect.Zero(t).Interface().(Enum)
	if !ok {
		return nil
	}
	return e.Values()
}
