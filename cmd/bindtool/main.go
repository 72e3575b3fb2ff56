// Package main is a command-line tool for trying out rule functions
// against declared environments.
//
// Subcommands:
//
//	resolve     invoke a function against an environment
//	html        render an environment (and functions) as HTML
//	trace       show a recorded trace
//	yamltojson  convert YAML on stdin to JSON
//
// Flag defaults come from the environment and an optional .env file.
// See LoadConfig.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/interpreters/goja"
	"github.com/Comcast/rulebind/tools"
	"github.com/Comcast/rulebind/tools/trace"

	"github.com/jsccast/yaml"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var UnknownSubcommand = errors.New("unknown subcommand")

func run(cfg *Config, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		Usage(out)
		return flag.ErrHelp
	}

	switch args[0] {
	case "resolve":
		return resolve(cfg, args[1:], out)
	case "html":
		return renderHTML(cfg, args[1:], out)
	case "trace":
		return showTrace(cfg, args[1:], out)
	case "yamltojson":
		return yamlToJSON(args[1:], in, out)
	default:
		Usage(out)
		return fmt.Errorf("%w \"%s\"", UnknownSubcommand, args[0])
	}
}

func Usage(out io.Writer) {
	fmt.Fprintf(out, `Subcommands:

  resolve -env ENV.yaml -fn FUNCTION.yaml [-strategy S] [-primary] [-trace DB] [-session NAME]
  html -env ENV.yaml [-fn FUNCTION.yaml] [-title TITLE]
  trace [-db DB] [-session NAME]
  yamltojson [-p]

`)
}

func loadEnv(ctx context.Context, i *goja.Interpreter, filename string) (*core.ScopedBindings, error) {
	d, err := tools.ReadEnvDecl(filename)
	if err != nil {
		return nil, err
	}
	return d.Build(ctx, i.Converter)
}

func loadFunction(ctx context.Context, i *goja.Interpreter, filename string) (*core.Function, error) {
	d, err := tools.ReadFunctionDecl(filename)
	if err != nil {
		return nil, err
	}
	return d.Function(ctx, i)
}

func resolve(cfg *Config, args []string, out io.Writer) error {
	var (
		fs       = flag.NewFlagSet("resolve", flag.ContinueOnError)
		envFile  = fs.String("env", "env.yaml", "environment declaration")
		fnFile   = fs.String("fn", "function.yaml", "function declaration")
		primary  = fs.Bool("primary", false, "prefer primary bindings")
		traceDB  = fs.String("trace", cfg.TraceDB, "BoltDB file for a trace")
		session  = fs.String("session", "", "trace session (default generated)")
		timeout  = fs.Duration("timeout", 5*time.Second, "function timeout")
		strategy = cfg.Strategy
	)
	fs.SetOutput(out)
	fs.TextVar(&strategy, "strategy", cfg.Strategy, "default matching strategy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	i := goja.NewInterpreter()
	i.LibraryProvider = goja.MakeFileLibraryProvider(cfg.LibDir)

	sb, err := loadEnv(ctx, i, *envFile)
	if err != nil {
		return err
	}
	f, err := loadFunction(ctx, i, *fnFile)
	if err != nil {
		return err
	}

	if *traceDB != "" {
		l := trace.NewLog(*traceDB)
		l.Debug = cfg.Debug
		if err = l.Open(); err != nil {
			return err
		}
		defer l.Close()

		if *session == "" {
			*session = core.Timestamp()
		}
		detach := trace.NewTracer(l, *session).Attach(sb)
		defer detach()
		fmt.Fprintf(os.Stderr, "trace session %s\n", *session)
	}

	// Each invocation gets its own scope.
	if _, err = sb.PushScope("", nil); err != nil {
		return err
	}
	defer sb.PopScope()

	r := core.NewResolver(i.Converter)
	r.Strategy = strategy
	r.PreferPrimary = *primary

	x, err := f.Invoke(ctx, r, sb)
	if err != nil {
		return err
	}

	js, err := json.Marshal(&x)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", js)
	return err
}

func renderHTML(cfg *Config, args []string, out io.Writer) error {
	var (
		fs      = flag.NewFlagSet("html", flag.ContinueOnError)
		envFile = fs.String("env", "env.yaml", "environment declaration")
		fnFile  = fs.String("fn", "", "optional function declaration")
		title   = fs.String("title", "Bindings", "page title")
		css     = fs.String("css", "", "stylesheet URL")
	)
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	i := goja.NewInterpreter()
	i.LibraryProvider = goja.MakeFileLibraryProvider(cfg.LibDir)

	sb, err := loadEnv(ctx, i, *envFile)
	if err != nil {
		return err
	}

	var fns []*core.Function
	if *fnFile != "" {
		f, err := loadFunction(ctx, i, *fnFile)
		if err != nil {
			return err
		}
		fns = append(fns, f)
	}

	var cssFiles []string
	if *css != "" {
		cssFiles = []string{*css}
	}

	return tools.RenderPage(*title, sb, fns, out, cssFiles)
}

func showTrace(cfg *Config, args []string, out io.Writer) error {
	var (
		fs      = flag.NewFlagSet("trace", flag.ContinueOnError)
		db      = fs.String("db", cfg.TraceDB, "BoltDB file")
		session = fs.String("session", "", "session to show (default: list sessions)")
	)
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *db == "" {
		return errors.New("no trace db")
	}

	l := trace.NewLog(*db)
	l.Debug = cfg.Debug
	if err := l.Open(); err != nil {
		return err
	}
	defer l.Close()

	if *session == "" {
		ss, err := l.Sessions()
		if err != nil {
			return err
		}
		for _, s := range ss {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	es, err := l.Events(*session)
	if err != nil {
		return err
	}
	for _, e := range es {
		js, err := json.Marshal(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", js)
	}
	return nil
}

func yamlToJSON(args []string, in io.Reader, out io.Writer) error {
	var (
		fs     = flag.NewFlagSet("yamltojson", flag.ContinueOnError)
		pretty = fs.Bool("p", false, "pretty-print")
	)
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	bs, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	var x interface{}
	if err = yaml.Unmarshal(bs, &x); err != nil {
		return err
	}

	if *pretty {
		bs, err = json.MarshalIndent(&x, "", "  ")
	} else {
		bs, err = json.Marshal(&x)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n", bs)
	return err
}
