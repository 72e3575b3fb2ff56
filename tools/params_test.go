package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/interpreters/goja"
	"github.com/Comcast/rulebind/types"
)

var fnYAML = `
name: tooHot
doc: Is it *too* hot?
params:
- name: temp
  type: Double
  doc: Current temperature.
- name: limit
  type: Double
  strategy: ByName
  default: "90"
- name: site
  type: Optional<String>
code: |
  return limit < temp;
`

func TestFunctionDeclParameters(t *testing.T) {
	d, err := ParseFunctionDecl([]byte(fnYAML))
	if err != nil {
		t.Fatal(err)
	}
	ps, err := d.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 3 {
		t.Fatal(len(ps))
	}

	if !ps[0].Type().Equal(types.DoubleType) || ps[0].Doc() != "Current temperature." {
		t.Fatal(ps[0])
	}
	if _, ok := ps[0].Strategy(); ok {
		t.Fatal("temp shouldn't have a strategy")
	}

	if s, ok := ps[1].Strategy(); !ok || s != core.ByName {
		t.Fatal(s)
	}
	if lit, ok := ps[1].Default(); !ok || lit != "90" {
		t.Fatal(lit)
	}

	if !ps[2].WrapsOptional() || !ps[2].Underlying().Equal(types.StringType) {
		t.Fatal(ps[2])
	}
}

func TestFunctionDeclBadStrategy(t *testing.T) {
	_, err := ParseFunctionDecl([]byte(`
name: f
params:
- name: x
  type: Int
  strategy: ByMood
code: return x;
`))
	if err == nil {
		t.Fatal("didn't protest")
	}
}

func TestFunctionDeclInvoke(t *testing.T) {
	d, err := ParseFunctionDecl([]byte(fnYAML))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	i := goja.NewInterpreter()
	f, err := d.Function(ctx, i)
	if err != nil {
		t.Fatal(err)
	}
	if f.Doc != "Is it *too* hot?" {
		t.Fatal(f.Doc)
	}

	sb := core.NewScopedBindings()
	if _, err = sb.BindValue("temp", types.DoubleType, 85.0); err != nil {
		t.Fatal(err)
	}

	r := core.NewResolver(i.Converter)

	// The default limit is 90.
	hot, err := f.Condition(ctx, r, sb)
	if err != nil {
		t.Fatal(err)
	}
	if hot {
		t.Fatal("85 isn't too hot")
	}

	if _, err = sb.BindValue("limit", types.DoubleType, 80.0); err != nil {
		t.Fatal(err)
	}
	if hot, err = f.Condition(ctx, r, sb); err != nil {
		t.Fatal(err)
	}
	if !hot {
		t.Fatal("85 is too hot")
	}

	// Without temp by name, two Doubles match by type.
	if _, err = sb.BindValue("outside", types.DoubleType, 70.0); err != nil {
		t.Fatal(err)
	}
	if err = sb.Remove("temp"); err != nil {
		t.Fatal(err)
	}
	_, err = f.Condition(ctx, r, sb)
	var ambiguous *core.AmbiguousMatch
	if !errors.As(err, &ambiguous) {
		t.Fatalf("%#v", err)
	}
}
