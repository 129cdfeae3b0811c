package entity

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// timeLayouts are tried in order when a temporal column arrives as text.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.DateOnly,
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// coerce stores src into dst, converting between driver and field types.
func coerce(dst reflect.Value, st SemanticType, src any) error {
	if sv := reflect.ValueOf(src); sv.Type() == dst.Type() {
		dst.Set(sv)
		return nil
	}
	switch st {
	case TypeInt:
		return coerceInt(dst, src)
	case TypeFloat:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
	case TypeDecimal:
		d, err := toDecimal(src)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(d))
	case TypeBool:
		b, err := toBool(src)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case TypeString:
		s, err := toString(src)
		if err != nil {
			return err
		}
		dst.SetString(s)
	case TypeEnum:
		s, err := toString(src)
		if err != nil {
			return err
		}
		v, err := matchEnum(dst.Type(), s)
		if err != nil {
			return err
		}
		dst.SetString(v)
	case TypeTime:
		t, err := toTime(src)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
	case TypeUUID:
		u, err := toUUID(src)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(u))
	case TypeBytes:
		switch v := src.(type) {
		case []byte:
			dst.SetBytes(append([]byte(nil), v...))
		case string:
			dst.SetBytes([]byte(v))
		default:
			return fmt.Errorf("cannot convert %T to bytes", src)
		}
	default:
		return coerceOther(dst, src)
	}
	return nil
}

func coerceInt(dst reflect.Value, src any) error {
	switch dst.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
	default:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	}
	return nil
}

func coerceOther(dst reflect.Value, src any) error {
	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(src)
	}
	sv := reflect.ValueOf(src)
	switch {
	case sv.Type().AssignableTo(dst.Type()):
		dst.Set(sv)
	case sv.Type().ConvertibleTo(dst.Type()):
		dst.Set(sv.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot convert %T to %s", src, dst.Type())
	}
	return nil
}

func toInt64(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case decimal.Decimal:
		if !v.Equal(v.Truncate(0)) {
			return 0, fmt.Errorf("%s is not integral", v)
		}
		return v.IntPart(), nil
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", src)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	// Numeric columns may come back as "42.0".
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, err
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}

func toFloat64(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	n, err := toInt64(src)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to float", src)
	}
	return float64(n), nil
}

func toDecimal(src any) (decimal.Decimal, error) {
	switch v := src.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(v)))
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	}
	n, err := toInt64(src)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", src)
	}
	return decimal.NewFromInt(n), nil
}

func toBool(src any) (bool, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(v)))
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	n, err := toInt64(src)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to bool", src)
	}
	return n != 0, nil
}

func toString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if n, err := toInt64(src); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	return "", fmt.Errorf("cannot convert %T to string", src)
}

func toTime(src any) (time.Time, error) {
	var s string
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", src)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

func toUUID(src any) (uuid.UUID, error) {
	switch v := src.(type) {
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case string:
		return uuid.Parse(v)
	case [16]byte:
		return uuid.UUID(v), nil
	}
	return uuid.UUID{}, fmt.Errorf("cannot convert %T to uuid", src)
}

var errUnknownEnum = errors.New("unknown enum value")

// matchEnum returns the declared enum value equal to s under Unicode case folding.
func matchEnum(t reflect.Type, s string) (string, error) {
	fold := cases.Fold()
	want := fold.String(s)
	for _, v := range enumValues(t) {
		if v == s || fold.String(v) == want {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q for %s", errUnknownEnum, s, t)
}
