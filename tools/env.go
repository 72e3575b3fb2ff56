package tools

import (
	"context"
	"fmt"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/types"

	"github.com/jsccast/yaml"
)

// BindingDecl declares a binding in YAML (or JSON).
type BindingDecl struct {
	Name string `json:"name" yaml:"name"`

	// Type is a type string like "Map<String, Int>".  If empty,
	// the type is inferred from the value.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`

	Immutable bool `json:"immutable,omitempty" yaml:"immutable,omitempty"`
	Final     bool `json:"final,omitempty" yaml:"final,omitempty"`
	Primary   bool `json:"primary,omitempty" yaml:"primary,omitempty"`

	// Doc is Markdown.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// ScopeDecl declares a named scope and its bindings.
type ScopeDecl struct {
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Bindings []BindingDecl `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// EnvDecl declares a whole ScopedBindings.  The first scope is the
// root.
type EnvDecl struct {
	Scopes []ScopeDecl `json:"scopes" yaml:"scopes"`
}

// ParseEnvDecl parses YAML (or JSON).
func ParseEnvDecl(bs []byte) (*EnvDecl, error) {
	var d EnvDecl
	if err := yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadEnvDecl reads the file, handling any %inline directives, and
// parses it.
func ReadEnvDecl(filename string) (*EnvDecl, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return ParseEnvDecl(bs)
}

// Binding builds the declared binding.
//
// A value that the declared type doesn't accept is given to the
// converter (if any).  YAML integers are ints, so a Long binding needs
// one.
func (d *BindingDecl) Binding(ctx context.Context, c core.Converter) (*core.Binding, error) {
	bb := core.NewBinding(d.Name).Description(d.Doc)

	v := d.Value
	if d.Type != "" {
		t, err := types.Parse(nil, d.Type)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", d.Name, err)
		}
		bb.Type(t)
		if v != nil && !t.AcceptsValue(v) && c != nil {
			if v, err = c.Convert(ctx, v, t); err != nil {
				return nil, fmt.Errorf("binding %s: %w", d.Name, err)
			}
		}
	}
	bb.Value(v)

	if d.Immutable {
		bb.Immutable()
	}
	if d.Final {
		bb.Final()
	}
	if d.Primary {
		bb.Primary()
	}

	return bb.Build()
}

// Build makes the ScopedBindings.
func (d *EnvDecl) Build(ctx context.Context, c core.Converter, opts ...core.Option) (*core.ScopedBindings, error) {
	if 0 < len(d.Scopes) && d.Scopes[0].Name != "" {
		opts = append(opts, core.WithRootName(d.Scopes[0].Name))
	}
	sb := core.NewScopedBindings(opts...)

	for i, s := range d.Scopes {
		if 0 < i {
			if _, err := sb.PushScope(s.Name, nil); err != nil {
				return nil, err
			}
		}
		for _, bd := range s.Bindings {
			b, err := bd.Binding(ctx, c)
			if err != nil {
				return nil, err
			}
			if err = sb.Bind(b); err != nil {
				return nil, err
			}
		}
	}

	return sb, nil
}

// DeclareEnv is the inverse of Build, which is handy for showing
// what an environment holds.
func DeclareEnv(sb *core.ScopedBindings) *EnvDecl {
	scopes := sb.Scopes()
	d := &EnvDecl{
		Scopes: make([]ScopeDecl, len(scopes)),
	}
	for i, s := range scopes {
		bs := s.Bindings().Bindings()
		sd := ScopeDecl{
			Name:     s.Name(),
			Bindings: make([]BindingDecl, len(bs)),
		}
		for j, b := range bs {
			sd.Bindings[j] = BindingDecl{
				Name:      b.Name(),
				Type:      b.Type().String(),
				Value:     b.Value(),
				Immutable: !b.IsMutable(),
				Final:     b.IsFinal(),
				Primary:   b.IsPrimary(),
				Doc:       b.Description(),
			}
		}
		d.Scopes[i] = sd
	}
	return d
}
