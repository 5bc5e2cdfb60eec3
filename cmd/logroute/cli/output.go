package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"logroute/internal/ruleconfig"
)

// ruleWriter renders a list of RuleRecords as either a table or JSON,
// per the CLI's --output flag.
type ruleWriter struct {
	asJSON bool
	w      io.Writer
}

func newRuleWriter(format string) *ruleWriter {
	return &ruleWriter{asJSON: format == "json", w: os.Stdout}
}

// write renders rules in the writer's configured format.
func (rw *ruleWriter) write(rules []ruleconfig.RuleRecord) error {
	if rw.asJSON {
		enc := json.NewEncoder(rw.w)
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	tw := tabwriter.NewWriter(rw.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tNAME\tQUERY\tSINKS\tDISABLED")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%v\n",
			r.ID, r.SourceID, r.Name, queryColumn(r), strings.Join(r.Sinks, ","), r.Disabled)
	}
	return tw.Flush()
}

// queryColumn shows CatchAll/CatchRest shortcuts in place of an empty
// Query, since those rules ignore Query entirely.
func queryColumn(r ruleconfig.RuleRecord) string {
	switch {
	case r.CatchAll:
		return "(catch-all)"
	case r.CatchRest:
		return "(catch-rest)"
	default:
		return r.Query
	}
}

// reportMatch prints the outcome of `rule test`: whether the sample
// event matched, and (when a query was actually parsed) its canonical
// re-serialized form.
func reportMatch(w io.Writer, matched bool, canonicalQuery string) {
	fmt.Fprintf(w, "match: %v\n", matched)
	if canonicalQuery != "" {
		fmt.Fprintf(w, "canonical query: %s\n", canonicalQuery)
	}
}
