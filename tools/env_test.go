package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/rulebind/convert"
	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/types"
)

var envYAML = `
scopes:
- name: global
  bindings:
  - name: limit
    type: Long
    value: 80
    final: true
    doc: The **limit**.
  - name: site
    value: lab
    immutable: true
- name: request
  bindings:
  - name: temp
    type: Double
    value: 85.5
    primary: true
`

func TestEnvDeclBuild(t *testing.T) {
	d, err := ParseEnvDecl([]byte(envYAML))
	if err != nil {
		t.Fatal(err)
	}

	sb, err := d.Build(context.Background(), convert.NewDefaultService())
	if err != nil {
		t.Fatal(err)
	}

	if got := sb.ScopeNames(); len(got) != 2 || got[0] != "global" || got[1] != "request" {
		t.Fatal(got)
	}

	limit := sb.Get("limit")
	if limit == nil {
		t.Fatal("no limit")
	}
	if limit.Value() != int64(80) {
		t.Fatalf("%#v", limit.Value())
	}
	if !limit.IsFinal() || limit.Description() != "The **limit**." {
		t.Fatal(limit)
	}

	site := sb.Get("site")
	if site == nil || !site.Type().Equal(types.StringType) || site.IsMutable() {
		t.Fatal(site)
	}

	temp := sb.CurrentScope().Bindings().Get("temp")
	if temp == nil || !temp.IsPrimary() || temp.Value() != 85.5 {
		t.Fatal(temp)
	}
}

func TestEnvDeclNoConverter(t *testing.T) {
	d, err := ParseEnvDecl([]byte(envYAML))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Build(context.Background(), nil)
	var mismatch *core.TypeMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("%#v", err)
	}
}

func TestEnvDeclShadowFinal(t *testing.T) {
	d := &EnvDecl{
		Scopes: []ScopeDecl{
			{Bindings: []BindingDecl{{Name: "x", Type: "Int", Value: 1, Final: true}}},
			{Name: "inner", Bindings: []BindingDecl{{Name: "x", Type: "Int", Value: 2}}},
		},
	}
	_, err := d.Build(context.Background(), nil)
	var shadow *core.ShadowForbidden
	if !errors.As(err, &shadow) {
		t.Fatalf("%#v", err)
	}
}

func TestEnvDeclBadType(t *testing.T) {
	d := &BindingDecl{Name: "x", Type: "Map<String"}
	if _, err := d.Binding(context.Background(), nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestDeclareEnv(t *testing.T) {
	d, err := ParseEnvDecl([]byte(envYAML))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	c := convert.NewDefaultService()
	sb, err := d.Build(ctx, c)
	if err != nil {
		t.Fatal(err)
	}

	again, err := DeclareEnv(sb).Build(ctx, c)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := again.Names(), sb.Names(); len(got) != len(want) {
		t.Fatal(got, want)
	}
	limit := again.Get("limit")
	if limit.Value() != int64(80) || !limit.IsFinal() || !limit.Type().Equal(types.LongType) {
		t.Fatal(limit)
	}
	if again.Get("site").IsMutable() {
		t.Fatal("site should be immutable")
	}
}
