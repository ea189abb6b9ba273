// Command luatable-repl is a small line-oriented script runner that
// exercises a single Table through its public operations: set, get,
// len, next, and stats. It reads commands from a file (-script) or
// stdin, one per line, and prints the result of each.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/embedlua/luatable/gc"
	"github.com/embedlua/luatable/table"
	"github.com/embedlua/luatable/value"
)

var (
	scriptPath string
	verbose    bool
)

func init() {
	flag.StringVar(&scriptPath, "script", "", "path to a script file (default: read stdin)")
	flag.BoolVar(&verbose, "verbose", false, "log gc write-barrier and trace activity")
}

func main() {
	flag.Parse()

	logger := log.NewLogfmtLogger(os.Stderr)
	if !verbose {
		logger = level.NewFilter(logger, level.AllowWarn())
	}

	in := io.Reader(os.Stdin)
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrapf(err, "opening script %s", scriptPath))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	r := newRunner(logger)
	if err := r.run(in, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runner struct {
	collector *gc.Collector
	tbl       *table.Table
}

func newRunner(logger log.Logger) *runner {
	c := gc.New(logger)
	return &runner{
		collector: c,
		tbl:       table.New(c.Mutate()),
	}
}

func (r *runner) run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.exec(line, out); err != nil {
			return errors.Wrapf(err, "line %d: %q", lineNo, line)
		}
	}
	return scanner.Err()
}

func (r *runner) exec(line string, out io.Writer) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "set":
		if len(args) != 2 {
			return errors.New("set takes exactly 2 arguments: <key> <value>")
		}
		key, err := parseLiteral(args[0])
		if err != nil {
			return errors.Wrap(err, "parsing key")
		}
		val, err := parseLiteral(args[1])
		if err != nil {
			return errors.Wrap(err, "parsing value")
		}
		mc := r.collector.Mutate()
		old, err := r.tbl.Set(mc, key, val)
		if err != nil {
			return errors.Wrap(err, "set")
		}
		fmt.Fprintf(out, "ok (was %s)\n", old)

	case "get":
		if len(args) != 1 {
			return errors.New("get takes exactly 1 argument: <key>")
		}
		key, err := parseLiteral(args[0])
		if err != nil {
			return errors.Wrap(err, "parsing key")
		}
		fmt.Fprintln(out, r.tbl.Get(key))

	case "len":
		fmt.Fprintln(out, r.tbl.Length())

	case "next":
		key := value.Nil
		if len(args) == 1 {
			var err error
			key, err = parseLiteral(args[0])
			if err != nil {
				return errors.Wrap(err, "parsing key")
			}
		}
		n := r.tbl.Next(key)
		switch n.Kind {
		case table.NextFound:
			fmt.Fprintf(out, "%s = %s\n", n.Key, n.Value)
		case table.NextLast:
			fmt.Fprintln(out, "(end)")
		case table.NextNotFound:
			fmt.Fprintln(out, "(key not present)")
		}

	case "stats":
		r.printStats(out)

	default:
		return errors.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (r *runner) printStats(out io.Writer) {
	fmt.Fprintf(out, "allocations : %s\n", humanize.Comma(r.collector.Allocs()))
	fmt.Fprintf(out, "writes      : %s\n", humanize.Comma(r.collector.Writes()))
	fmt.Fprintf(out, "length      : %s\n", humanize.Comma(r.tbl.Length()))
	fmt.Fprintf(out, "is sequence : %t\n", r.tbl.IsSequence())
}

// parseLiteral recognizes the handful of literal forms a script needs
// to exercise table operations: nil, true/false, quoted strings, and
// integers or floats (tried in that order, so "3" becomes Integer(3)
// rather than Number(3.0) — canonicalization makes this distinction
// invisible to get/set anyway). The parsed Go-native literal is handed
// to value.IntoValue rather than built with value.Integer/value.Number
// directly, so the runtime-facing coercion path gets exercised on
// every script line instead of sitting unused behind the table API.
func parseLiteral(s string) (value.Value, error) {
	switch s {
	case "nil":
		return value.IntoValue(nil), nil
	case "true":
		return value.IntoValue(true), nil
	case "false":
		return value.IntoValue(false), nil
	}
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		return value.IntoValue(s[1 : len(s)-1]), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.IntoValue(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.IntoValue(f), nil
	}
	return value.Value{}, errors.Errorf("unrecognized literal %q", s)
}
