package tools

import (
	"context"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/interpreters/goja"
	"github.com/Comcast/rulebind/types"

	"gopkg.in/yaml.v2"
)

// ParamDecl declares a parameter.  The type and the strategy are
// parsed by their UnmarshalText methods.
type ParamDecl struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type     types.Type     `json:"type" yaml:"type"`
	Strategy *core.Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Default  *string        `json:"default,omitempty" yaml:"default,omitempty"`
	Doc      string         `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Parameter builds the descriptor.
func (d *ParamDecl) Parameter() (*core.ParameterDescriptor, error) {
	pb := core.NewParameter(d.Name, d.Type).Doc(d.Doc)
	if d.Strategy != nil {
		pb.Strategy(*d.Strategy)
	}
	if d.Default != nil {
		pb.Default(*d.Default)
	}
	return pb.Build()
}

// FunctionDecl declares a rule function written in ECMAScript.
//
// Code is either a string or a map with "code" and "requires".  See
// goja.AsSource.
type FunctionDecl struct {
	Name   string      `json:"name" yaml:"name"`
	Doc    string      `json:"doc,omitempty" yaml:"doc,omitempty"`
	Params []ParamDecl `json:"params,omitempty" yaml:"params,omitempty"`
	Code   interface{} `json:"code" yaml:"code"`
}

// ParseFunctionDecl parses YAML.
func ParseFunctionDecl(bs []byte) (*FunctionDecl, error) {
	var d FunctionDecl
	if err := yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFunctionDecl reads the file, handling any %inline directives, and
// parses it.
func ReadFunctionDecl(filename string) (*FunctionDecl, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return ParseFunctionDecl(bs)
}

// Parameters builds the descriptors in order.
func (d *FunctionDecl) Parameters() ([]*core.ParameterDescriptor, error) {
	acc := make([]*core.ParameterDescriptor, len(d.Params))
	for i := range d.Params {
		p, err := d.Params[i].Parameter()
		if err != nil {
			return nil, err
		}
		acc[i] = p
	}
	return acc, nil
}

// Function compiles the declared function.
func (d *FunctionDecl) Function(ctx context.Context, i *goja.Interpreter) (*core.Function, error) {
	ps, err := d.Parameters()
	if err != nil {
		return nil, err
	}
	f, err := i.Function(ctx, d.Name, ps, d.Code)
	if err != nil {
		return nil, err
	}
	f.Doc = d.Doc
	return f, nil
}
