package goja

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// inlinePrefix wraps the source for parsing.  The source is a
// function body (see Compile), so it can contain a return.
const inlinePrefix = "function inlined() {\n"

// InlineRequires generates new source code that replaces top-level
// require("lib") statements with the source of those libraries.
//
// Goja can't easily modify ASTs or Programs, so this function rewrites
// the given source based on the positions of the require statements
// in the source's AST.  The result can be precompiled, which a
// runtime require() (via eval) would prevent.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {

	p, err := parser.ParseFile(nil, "", inlinePrefix+src+"\n}", 0)
	if err != nil {
		return "", err
	}
	if len(p.Body) != 1 {
		return "", fmt.Errorf("expected a single function body, not %d statements", len(p.Body))
	}
	decl, is := p.Body[0].(*ast.FunctionDeclaration)
	if !is {
		return "", fmt.Errorf("expected a function body, not a %T", p.Body[0])
	}

	type required struct {
		from, to int
		name     string
	}

	requires := make([]required, 0, 8)

	for _, s := range decl.Function.Body.List {
		exps, is := s.(*ast.ExpressionStatement)
		if !is {
			continue
		}

		call, is := exps.Expression.(*ast.CallExpression)
		if !is {
			continue
		}

		id, is := call.Callee.(*ast.Identifier)
		if !is || id.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}

		arg := call.ArgumentList[0]
		lit, is := arg.(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", arg)
		}

		// Idx0 and Idx1 are 1-based.
		requires = append(requires, required{
			from: int(exps.Idx0()) - 1 - len(inlinePrefix),
			to:   int(exps.Idx1()) - 1 - len(inlinePrefix),
			name: string(lit.Value),
		})
	}

	if len(requires) == 0 {
		return src, nil
	}

	var acc strings.Builder
	last := 0
	for _, r := range requires {
		lib, err := provider(ctx, r.name)
		if err != nil {
			return "", err
		}
		acc.WriteString(src[last:r.from])
		acc.WriteString(lib)
		acc.WriteString("\n")
		last = r.to
		// Swallow the statement's semicolon.
		if last < len(src) && src[last] == ';' {
			last++
		}
	}
	acc.WriteString(src[last:])

	return acc.String(), nil
}
