/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package goja provides rule functions written in ECMAScript.
//
// The parameters of such a function are ordinary
// core.ParameterDescriptors, so a core.Resolver supplies the
// arguments.  Each named parameter is visible to the code as a
// variable with that name.  All arguments are also at _.args.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/rulebind/convert"
	"github.com/Comcast/rulebind/core"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter compiles and runs ECMAScript using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// InlineRequires, when true, makes Compile replace top-level
	// require("lib") statements with the library's source.
	InlineRequires bool

	// Converter is used by _.set() when the given value doesn't
	// fit the binding's type.  JavaScript numbers arrive as
	// int64s or float64s, so a binding declared Int needs this.
	Converter core.Converter

	// LibraryProvider is a pluggable library provider.  If nil,
	// DefaultLibraryProvider is used.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter that uses the default
// conversion service.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		Converter: convert.NewDefaultService(),
	}
}

// CompileLibrary checks that the library compiles.
func (i *Interpreter) CompileLibrary(ctx context.Context, name, src string) (interface{}, error) {
	return goja.Compile(name, src, true)
}

// ProvideLibrary resolves the library name into a library.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

// DefaultLibraryProvider reads "file://" libraries from the current
// directory.
var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider returns a provider for names like
// "file://libs/time.js", which are read relative to dir.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		if parts[0] != "file" {
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
		filename := filepath.Clean(parts[1])
		if strings.HasPrefix(filename, "..") || filepath.IsAbs(filename) {
			return "", fmt.Errorf("library '%s' is outside of %s", name, dir)
		}
		bs, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider returns a provider that looks up libraries
// in the given map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	x := vv["code"]
	if s, is := x.(string); is {
		code = s
	} else {
		err = errors.New("bad Goja code")
		return
	}

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = fmt.Errorf("bad library (%T)", x)
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}

	return
}

// AsSource accepts either a string of code or a map with "code" and
// (optionally) "requires".
//
// The YAML parser https://github.com/go-yaml/yaml will return
// map[interface{}]interface{}, so that's supported too.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad Goja source (%T)", src)
		return
	}
}

// Compile prepends any required libraries and compiles the code,
// which is run as the body of a function.  So the code should
// `return` its result.
//
// This method can block if the interpreter's library provider blocks
// in order to obtain external libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (*goja.Program, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	if i.InlineRequires {
		provider := func(ctx context.Context, name string) (string, error) {
			return i.ProvideLibrary(ctx, name)
		}
		if code, err = InlineRequires(ctx, code, provider); err != nil {
			return nil, err
		}
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return p, nil
}

// Function compiles the source and returns a core.Function that runs
// it with the resolved arguments.
func (i *Interpreter) Function(ctx context.Context, name string, params []*core.ParameterDescriptor, src interface{}) (*core.Function, error) {
	p, err := i.Compile(ctx, src)
	if err != nil {
		return nil, err
	}
	return &core.Function{
		Name:   name,
		Params: params,
		F: func(ctx context.Context, args []interface{}) (interface{}, error) {
			return i.Exec(ctx, params, args, p)
		},
	}, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// jsArg gives an Optional to the code as its value or null.
func jsArg(x interface{}) interface{} {
	if o, is := x.(core.Optional); is {
		return o.OrElse(nil)
	}
	return x
}

// Exec runs the compiled code with the given arguments.
//
// The following properties are available from the runtime at _.
//
//	args: the arguments, in order.
//	set(b, x): set the value of a Binding argument.
//
// Some useful utilities:
//
//	gensym(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(s): the next time (RFC3339Nano) for a cron expression.
//	log(x): log the JSON representation of x.
//
// For testing only:
//
//	sleep(ms): sleep for the given number of milliseconds.
//
// The Testing flag must be set to see sleep().
func (i *Interpreter) Exec(ctx context.Context, params []*core.ParameterDescriptor, args []interface{}, p *goja.Program) (interface{}, error) {
	if len(params) != len(args) {
		return nil, fmt.Errorf("%d parameters but %d arguments", len(params), len(args))
	}

	o := goja.New()

	jsArgs := make([]interface{}, len(args))
	for n, x := range args {
		jsArgs[n] = jsArg(x)
		if name := params[n].Name(); name != "" {
			o.Set(name, jsArgs[n])
		}
	}

	env := map[string]interface{}{
		"ctx":  ctx,
		"args": jsArgs,
	}

	o.Set("_", env)

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["gensym"] = func() interface{} {
		return core.Gensym(32)
	}

	env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := convert.ParseSchedule(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(convert.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		s, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	env["set"] = func(b, x interface{}) interface{} {
		binding, is := export(b).(*core.Binding)
		if !is {
			protest(o, fmt.Sprintf("a %T is not a binding", export(b)))
		}
		v := export(x)
		if !binding.Type().AcceptsValue(v) && i.Converter != nil {
			y, err := i.Converter.Convert(ctx, v, binding.Type())
			if err != nil {
				protest(o, err.Error())
			}
			v = y
		}
		if err := binding.SetValue(v); err != nil {
			protest(o, err.Error())
		}
		return v
	}

	env["log"] = func(x interface{}) interface{} {
		x = export(x)
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}

		return x
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}
