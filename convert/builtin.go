package convert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Comcast/rulebind/types"

	"github.com/jsccast/yaml"
)

// TimeLayout is used to parse and format Times.
var TimeLayout = time.RFC3339Nano

// OutOfRange occurs when a number doesn't fit the target kind.
var OutOfRange = errors.New("number out of range")

// NotIntegral occurs when a number with a fractional part is
// converted to an integer kind.
var NotIntegral = errors.New("number is not integral")

// RegisterBuiltins adds the standard conversions: strings to
// primitives, collections and schedules; numbers to numbers; and
// anything to String.
func RegisterBuiltins(s *Service) {
	s.Register(types.String, types.Int, parseInt(strconv.IntSize, func(n int64) interface{} { return int(n) }))
	s.Register(types.String, types.Long, parseInt(64, func(n int64) interface{} { return n }))
	s.Register(types.String, types.Float, parseFloat(32))
	s.Register(types.String, types.Double, parseFloat(64))
	s.Register(types.String, types.Number, parseFloat(64))
	s.Register(types.String, types.Bool, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return strconv.ParseBool(strings.TrimSpace(v.(string)))
	})
	s.Register(types.String, types.Duration, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return time.ParseDuration(strings.TrimSpace(v.(string)))
	})
	s.Register(types.String, types.Time, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return time.Parse(TimeLayout, strings.TrimSpace(v.(string)))
	})
	s.Register(types.String, types.List, parseYAML)
	s.Register(types.String, types.Collection, parseYAML)
	s.Register(types.String, types.Map, parseYAML)

	s.Register(types.Number, types.Int, toInt(strconv.IntSize, func(n int64) interface{} { return int(n) }))
	s.Register(types.Number, types.Long, toInt(64, func(n int64) interface{} { return n }))
	s.Register(types.Number, types.Float, toFloat(32))
	s.Register(types.Number, types.Double, toFloat(64))
	s.Register(types.Number, types.Duration, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		n, err := integral(v, 64)
		if err != nil {
			return nil, err
		}
		return time.Duration(n), nil
	})

	RegisterSchedules(s)

	s.Register(types.Object, types.String, toString)
}

func parseInt(bits int, f func(int64) interface{}) Func {
	return func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(v.(string)), 10, bits)
		if err != nil {
			return nil, err
		}
		return f(n), nil
	}
}

func parseFloat(bits int) Func {
	return func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		x, err := strconv.ParseFloat(strings.TrimSpace(v.(string)), bits)
		if err != nil {
			return nil, err
		}
		if bits == 32 {
			return float32(x), nil
		}
		return x, nil
	}
}

// parseYAML parses YAML (and therefore JSON) text.  The result must
// be accepted by the target's kind.
func parseYAML(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
	var x interface{}
	if err := yaml.Unmarshal([]byte(v.(string)), &x); err != nil {
		return nil, err
	}
	if !target.AcceptsValue(x) {
		return nil, fmt.Errorf("%q parsed as a %T, not a %s", v, x, target)
	}
	return x, nil
}

// integral returns the number as an int64 if it fits in the given
// number of bits and has no fractional part.
func integral(v interface{}, bits int) (int64, error) {
	var n int64
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if math.MaxInt64 < u {
			return 0, OutOfRange
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, NotIntegral
		}
		if f < math.MinInt64 || math.MaxInt64 <= f {
			return 0, OutOfRange
		}
		n = int64(f)
	default:
		return 0, fmt.Errorf("%T isn't a number", v)
	}
	if bits < 64 {
		lim := int64(1) << (bits - 1)
		if n < -lim || lim <= n {
			return 0, OutOfRange
		}
	}
	return n, nil
}

func toInt(bits int, f func(int64) interface{}) Func {
	return func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		n, err := integral(v, bits)
		if err != nil {
			return nil, err
		}
		return f(n), nil
	}
}

func toFloat(bits int) Func {
	return func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		var x float64
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			x = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			x = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			x = rv.Float()
		default:
			return nil, fmt.Errorf("%T isn't a number", v)
		}
		if bits == 32 {
			if math.MaxFloat32 < math.Abs(x) {
				return nil, OutOfRange
			}
			return float32(x), nil
		}
		return x, nil
	}
}

func toString(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
	switch vv := v.(type) {
	case time.Time:
		return vv.Format(TimeLayout), nil
	case fmt.Stringer:
		return vv.String(), nil
	case []interface{}, map[string]interface{}:
		bs, err := yaml.Marshal(vv)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(string(bs)), nil
	default:
		return fmt.Sprint(v), nil
	}
}
