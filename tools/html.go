package tools

import (
	"fmt"
	"html"
	"io"

	"github.com/Comcast/rulebind/core"
	. "github.com/Comcast/rulebind/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderEnvHTML writes an HTML fragment with a table for each scope,
// root first.  Binding descriptions are rendered as Markdown.
//
// A binding that's shadowed by an inner scope gets the "shadowed"
// class.
func RenderEnvHTML(sb *core.ScopedBindings, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	scopes := sb.Scopes()
	for i, s := range scopes {
		f(`<div class="scope"><h2 id="%s" class="scopeName">%s</h2>`, s.Name(), html.EscapeString(s.Name()))
		f(`<table class="bindings">`)
		f(`<tr><th>name</th><th>type</th><th>value</th><th>flags</th><th></th></tr>`)
		for _, b := range s.Bindings().Bindings() {
			class := "binding"
			for _, inner := range scopes[i+1:] {
				if inner.Bindings().Contains(b.Name()) {
					class += " shadowed"
					break
				}
			}
			f(`<tr class="%s">`, class)
			f(`<td><span class="bindingName">%s</span></td>`, html.EscapeString(b.Name()))
			f(`<td><code>%s</code></td>`, html.EscapeString(b.Type().String()))
			f(`<td><code>%s</code></td>`, html.EscapeString(JS(b.Value())))
			f(`<td>%s</td>`, flags(b))
			if doc := b.Description(); doc != "" {
				f(`<td><div class="bindingDoc doc">%s</div></td>`, md.Run([]byte(doc)))
			} else {
				f(`<td></td>`)
			}
			f(`</tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

func flags(b *core.Binding) string {
	var acc string
	add := func(s string) {
		if acc != "" {
			acc += " "
		}
		acc += `<span class="flag">` + s + `</span>`
	}
	if !b.IsMutable() {
		add("immutable")
	}
	if b.IsFinal() {
		add("final")
	}
	if b.IsPrimary() {
		add("primary")
	}
	return acc
}

// RenderFunctionHTML writes an HTML fragment documenting the
// function's parameters.
func RenderFunctionHTML(fn *core.Function, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="function"><h2 class="functionName">%s</h2>`, html.EscapeString(fn.Name))
	if fn.Doc != "" {
		f(`<div class="functionDoc doc">%s</div>`, md.Run([]byte(fn.Doc)))
	}
	f(`<table class="params">`)
	for _, p := range fn.Params {
		f(`<tr class="param">`)
		f(`<td><span class="paramName">%s</span></td>`, html.EscapeString(p.Name()))
		f(`<td><code>%s</code></td>`, html.EscapeString(p.Type().String()))
		if s, ok := p.Strategy(); ok {
			f(`<td>%s</td>`, s)
		} else {
			f(`<td></td>`)
		}
		if d, ok := p.Default(); ok {
			f(`<td><code>%s</code></td>`, html.EscapeString(d))
		} else {
			f(`<td></td>`)
		}
		if p.Doc() != "" {
			f(`<td><div class="paramDoc doc">%s</div></td>`, md.Run([]byte(p.Doc())))
		} else {
			f(`<td></td>`)
		}
		f(`</tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderPage writes a complete HTML page for the environment and the
// functions.
func RenderPage(title string, sb *core.ScopedBindings, fns []*core.Function, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/env-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(title))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(title))

	if sb != nil {
		if err := RenderEnvHTML(sb, out); err != nil {
			return err
		}
	}

	for _, fn := range fns {
		if err := RenderFunctionHTML(fn, out); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}
