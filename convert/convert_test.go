package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/types"

	"github.com/gorhill/cronexpr"
)

func TestConvert(t *testing.T) {
	s := NewDefaultService()
	ctx := context.Background()

	tests := []struct {
		name   string
		v      interface{}
		target string
		want   interface{}
	}{
		{"already", 1, "Int", 1},
		{"stringToInt", " 42 ", "Int", 42},
		{"stringToLong", "42", "Long", int64(42)},
		{"stringToFloat", "1.5", "Float", float32(1.5)},
		{"stringToDouble", "1.5", "Double", 1.5},
		{"stringToNumber", "1.5", "Number", 1.5},
		{"stringToBool", "true", "Bool", true},
		{"stringToDuration", "1m", "Duration", time.Minute},
		{"intToLong", 3, "Long", int64(3)},
		{"longToInt", int64(3), "Int", 3},
		{"doubleToInt", 3.0, "Int", 3},
		{"intToDouble", 3, "Double", 3.0},
		{"numberToDuration", int64(time.Second), "Duration", time.Second},
		{"intToString", 42, "String", "42"},
		{"durationToString", time.Minute, "String", "1m0s"},
		{"boolToString", false, "String", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Convert(ctx, tt.v, types.MustParse(tt.target))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, wanted %#v", got, tt.want)
			}
		})
	}
}

func TestConvertFailures(t *testing.T) {
	s := NewDefaultService()
	ctx := context.Background()

	tests := []struct {
		name   string
		v      interface{}
		target string
		err    error
	}{
		{"notIntegral", 3.5, "Int", NotIntegral},
		{"outOfRange", 1e20, "Long", OutOfRange},
		{"badInt", "forty-two", "Int", nil},
		{"badBool", "maybe", "Bool", nil},
		{"notAList", "42", "List", nil},
		{"noConverter", true, "Int", nil},
		{"nilToInt", nil, "Int", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Convert(ctx, tt.v, types.MustParse(tt.target))
			if err == nil {
				t.Fatal("should have failed")
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatal(err)
			}
		})
	}

	var nc *NoConverter
	if _, err := s.Convert(ctx, true, types.IntType); !errors.As(err, &nc) {
		t.Fatalf("wanted NoConverter, not %v", err)
	}
}

func TestConvertTime(t *testing.T) {
	s := NewDefaultService()
	x, err := s.Convert(context.Background(), "2019-03-04T05:06:07Z", types.Of(types.Time))
	if err != nil {
		t.Fatal(err)
	}
	then := x.(time.Time)
	if then.Year() != 2019 || then.Hour() != 5 {
		t.Fatal(then)
	}

	y, err := s.Convert(context.Background(), then, types.StringType)
	if err != nil {
		t.Fatal(err)
	}
	if y != "2019-03-04T05:06:07Z" {
		t.Fatal(y)
	}
}

func TestConvertCollections(t *testing.T) {
	s := NewDefaultService()
	ctx := context.Background()

	x, err := s.Convert(ctx, "[1, 2, 3]", types.MustParse("List<Int>"))
	if err != nil {
		t.Fatal(err)
	}
	if xs, is := x.([]interface{}); !is || len(xs) != 3 {
		t.Fatalf("%#v", x)
	}

	if x, err = s.Convert(ctx, `{"likes": "chips"}`, types.MustParse("Map<String, String>")); err != nil {
		t.Fatal(err)
	}
	if !types.Of(types.Map).AcceptsValue(x) {
		t.Fatalf("%T", x)
	}
}

func TestConvertSchedule(t *testing.T) {
	s := NewDefaultService()
	ctx := context.Background()

	x, err := s.Convert(ctx, "0 0 * * * * *", types.Of(Schedule))
	if err != nil {
		t.Fatal(err)
	}
	if _, is := x.(*cronexpr.Expression); !is {
		t.Fatalf("%T", x)
	}
	if got := types.TypeOf(x); got.Kind != Schedule {
		t.Fatal(got)
	}

	then := time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC)
	was := Now
	Now = func() time.Time { return then }
	defer func() { Now = was }()

	y, err := s.Convert(ctx, x, types.Of(types.Time))
	if err != nil {
		t.Fatal(err)
	}
	if next := y.(time.Time); !next.Equal(time.Date(2019, 3, 4, 6, 0, 0, 0, time.UTC)) {
		t.Fatal(next)
	}

	if _, err = s.Convert(ctx, "not cron", types.Of(Schedule)); err == nil {
		t.Fatal("should have complained")
	}
}

func TestServiceRegister(t *testing.T) {
	s := NewService(nil)
	if _, err := s.Convert(context.Background(), "1", types.IntType); err == nil {
		t.Fatal("empty service converted something")
	}

	s.Register(types.Object, types.Int, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return 7, nil
	})
	s.Register(types.String, types.Int, func(ctx context.Context, v interface{}, target types.Type) (interface{}, error) {
		return 1, nil
	})

	// The exact source kind wins over a superkind.
	if x, err := s.Convert(context.Background(), "1", types.IntType); err != nil || x != 1 {
		t.Fatal(x, err)
	}
	if x, err := s.Convert(context.Background(), true, types.IntType); err != nil || x != 7 {
		t.Fatal(x, err)
	}
	if n := len(s.Keys()); n != 2 {
		t.Fatal(n)
	}
}

// The Service works as a Resolver's Converter.
func TestServiceResolver(t *testing.T) {
	sb := core.NewScopedBindings()
	if _, err := sb.BindValue("timeout", types.StringType, "30s"); err != nil {
		t.Fatal(err)
	}
	if _, err := sb.BindValue("every", types.StringType, "@hourly"); err != nil {
		t.Fatal(err)
	}

	ps := []*core.ParameterDescriptor{
		core.NewParameter("timeout", types.Of(types.Duration)).Strategy(core.ByName).MustBuild(),
		core.NewParameter("retries", types.IntType).Default("3").MustBuild(),
		core.NewParameter("every", types.Of(Schedule)).Strategy(core.ByName).MustBuild(),
	}

	vs, err := core.NewResolver(NewDefaultService()).Resolve(context.Background(), ps, sb)
	if err != nil {
		t.Fatal(err)
	}
	if vs[0] != 30*time.Second {
		t.Fatal(vs[0])
	}
	if vs[1] != 3 {
		t.Fatal(vs[1])
	}
	if _, is := vs[2].(*cronexpr.Expression); !is {
		t.Fatalf("%T", vs[2])
	}
}
