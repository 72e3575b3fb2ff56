package core

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/rulebind/types"
)

func TestFunctionInvoke(t *testing.T) {
	sb := NewScopedBindings()
	mustBindValue(t, sb, "a", types.IntType, 1)
	mustBindValue(t, sb, "b", types.IntType, 2)

	f := &Function{
		Name: "add",
		Params: []*ParameterDescriptor{
			NewParameter("a", types.IntType).Strategy(ByName).MustBuild(),
			NewParameter("b", types.IntType).Strategy(ByName).MustBuild(),
		},
		F: func(ctx context.Context, args []interface{}) (interface{}, error) {
			return args[0].(int) + args[1].(int), nil
		},
	}

	x, err := f.Invoke(context.Background(), NewResolver(nil), sb)
	if err != nil {
		t.Fatal(err)
	}
	if x != 3 {
		t.Fatal(x)
	}

	var nc *NotACondition
	if _, err = f.Condition(context.Background(), NewResolver(nil), sb); !errors.As(err, &nc) {
		t.Fatalf("wanted NotACondition, not %v", err)
	}
}

func TestFunctionCondition(t *testing.T) {
	sb := NewScopedBindings()
	mustBindValue(t, sb, "temp", types.DoubleType, 85.0)

	f := &Function{
		Name: "tooHot",
		Params: []*ParameterDescriptor{
			NewParameter("temp", types.DoubleType).MustBuild(),
			NewParameter("limit", types.DoubleType).Strategy(ByName).Default("80").MustBuild(),
		},
		F: func(ctx context.Context, args []interface{}) (interface{}, error) {
			return args[1].(float64) < args[0].(float64), nil
		},
	}

	limit := ConverterFunc(func(ctx context.Context, v interface{}, t types.Type) (interface{}, error) {
		return 80.0, nil
	})

	hot, err := f.Condition(context.Background(), NewResolver(limit), sb)
	if err != nil {
		t.Fatal(err)
	}
	if !hot {
		t.Fatal("should be too hot")
	}
}

func TestFunctionResolutionFailed(t *testing.T) {
	called := false
	f := &Function{
		Name: "f",
		Params: []*ParameterDescriptor{
			NewParameter("", types.IntType).Strategy(ByType).MustBuild(),
		},
		F: func(ctx context.Context, args []interface{}) (interface{}, error) {
			called = true
			return nil, nil
		},
	}

	bs := NewBindings()
	mustBindValue(t, bs, "a", types.IntType, 1)
	mustBindValue(t, bs, "b", types.IntType, 2)

	_, err := f.Invoke(context.Background(), NewResolver(nil), bs)
	var inf *InvocationFailed
	if !errors.As(err, &inf) {
		t.Fatalf("wanted InvocationFailed, not %v", err)
	}
	var am *AmbiguousMatch
	if !errors.As(err, &am) {
		t.Fatalf("wanted AmbiguousMatch, not %v", err)
	}
	if called {
		t.Fatal("shouldn't have been called")
	}
}
