package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logroute/internal/lql"
	"logroute/internal/router"
	"logroute/internal/schema"
)

// repl is an interactive shell for building and checking LQL queries
// against a schema inferred from sample events, without touching a
// running rule store or any sinks.
type repl struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger

	schema schema.Schema
	event  router.Event
	cache  *router.RegexCache
}

func newReplCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse and test LQL queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &repl{
				in:     bufio.NewScanner(os.Stdin),
				out:    os.Stdout,
				logger: logger,
				cache:  router.NewRegexCache(router.DefaultRegexCacheSize),
			}
			return r.run()
		},
	}
}

func (r *repl) run() error {
	r.printf("logroute REPL. Type 'help' for commands.\n")
	r.printf("> ")

	for r.in.Scan() {
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			r.printf("> ")
			continue
		}
		if exit := r.execute(line); exit {
			return nil
		}
		r.printf("> ")
	}
	return r.in.Err()
}

// execute parses and runs a single command line. Returns true if the
// REPL should exit.
func (r *repl) execute(line string) bool {
	parts := strings.SplitN(line, " ", 2)
	cmd := parts[0]
	var rest string
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "help":
		r.cmdHelp()
	case "load":
		r.cmdLoad(rest)
	case "schema":
		r.cmdSchema()
	case "parse":
		r.cmdParse(rest)
	case "test":
		r.cmdTest(rest)
	case "exit", "quit":
		return true
	default:
		r.printf("Unknown command: %s. Type 'help' for commands.\n", cmd)
	}
	return false
}

func (r *repl) cmdHelp() {
	r.printf(`Commands:
  help             Show this help
  load <path>      Load a sample event from a JSON file; infers the schema from it
  schema           Show the current schema's known paths and types
  parse <query>    Parse an LQL query against the current schema and print it canonically
  test <query>     Parse a query and report whether the loaded event matches it
  exit             Exit the REPL
`)
}

func (r *repl) cmdLoad(path string) {
	if path == "" {
		r.printf("usage: load <path>\n")
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		r.printf("read error: %v\n", err)
		return
	}
	sch, err := schema.FromSampleEvents([][]byte{raw})
	if err != nil {
		r.printf("schema error: %v\n", err)
		return
	}
	var ev router.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		r.printf("event parse error: %v\n", err)
		return
	}
	r.schema = sch
	r.event = ev
	r.printf("Loaded %d field(s) from %s\n", len(sch.Paths()), path)
}

func (r *repl) cmdSchema() {
	paths := r.schema.Paths()
	if len(paths) == 0 {
		r.printf("No schema loaded. Use 'load <path>' first.\n")
		return
	}
	for _, p := range paths {
		typ, _ := r.schema.Resolve(p)
		r.printf("%s: %s\n", p, typ)
	}
}

func (r *repl) cmdParse(query string) {
	if query == "" {
		r.printf("usage: parse <query>\n")
		return
	}
	rs, err := lql.Parse(query, r.schema)
	if err != nil {
		r.printf("parse error: %v\n", err)
		return
	}
	r.printf("%s\n", lql.Serialize(rs))
}

func (r *repl) cmdTest(query string) {
	if query == "" {
		r.printf("usage: test <query>\n")
		return
	}
	rs, err := lql.Parse(query, r.schema)
	if err != nil {
		r.printf("parse error: %v\n", err)
		return
	}
	if r.event == nil {
		r.printf("No event loaded. Use 'load <path>' first.\n")
		return
	}
	matched := router.MatchesAll(r.event, rs.Search, r.cache)
	r.printf("match: %v\n", matched)
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
