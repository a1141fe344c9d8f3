package reporter

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/resolvebench/pkg/dnsbench"
	"github.com/tantalor93/resolvebench/pkg/printutils"
	"github.com/tantalor93/resolvebench/pkg/resolver"
)

type standardReporter struct{}

func (s *standardReporter) start(w io.Writer, suite string) {
	printutils.NeutralFprintf(w, "Started: %s\n", suite)
}

func (s *standardReporter) cycle(w io.Writer, res *dnsbench.Result) {
	printutils.NeutralFprintf(w, "%s\n", res.String())
}

func (s *standardReporter) complete(params reportParameters) error {
	if params.summary {
		printSummary(params)
	}

	if len(params.fastest) == 0 {
		printutils.ErrFprintf(params.outputWriter, "%s is: none, no benchmark succeeded\n", fastestLabel(params.compare))
		return nil
	}
	printutils.NeutralFprintf(params.outputWriter, "%s is: %s\n",
		fastestLabel(params.compare), printutils.HighlightSprint(joinNames(params.fastest)))
	return nil
}

func printSummary(params reportParameters) {
	w := params.outputWriter
	printutils.NeutralFprintf(w, "\nSuite %s took %s, %s samples\n", printutils.HighlightSprint(params.suite),
		printutils.HighlightSprint(roundDuration(params.suiteDuration)), printutils.HighlightSprint(params.totals.Count))

	lines := make([][]string, 0, len(params.results))
	for _, r := range params.results {
		name := r.Name
		if slices.Contains(params.fastest, r) {
			name += " *"
		}
		lines = append(lines, []string{
			name,
			dnsbench.FormatHz(r.Hz),
			fmt.Sprintf("±%.2f%%", r.RME),
			roundDuration(r.Mean).String(),
			roundDuration(r.Percentile(50)).String(),
			roundDuration(r.Percentile(99)).String(),
			strconv.FormatInt(r.Count, 10),
			strconv.FormatInt(r.Failed, 10),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Benchmark", "ops/sec", "RME", "Mean", "p50", "p99", "Samples", "Failed"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(lines)
	table.Render()

	if params.totals.Failed == 0 {
		printutils.SuccessFprintf(w, "No failed samples\n\n")
		return
	}

	kinds := make([]string, 0, len(params.totals.Kinds))
	for k := range params.totals.Kinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	printutils.ErrFprintf(w, "Total Errors: %d\n", params.totals.Failed)
	for _, k := range kinds {
		printutils.ErrFprintf(w, "\t%s:\t%d\n", k, params.totals.Kinds[resolver.Kind(k)])
	}
	for _, r := range params.results {
		if r.Failed == 0 {
			continue
		}
		printutils.ErrFprintf(w, "Top errors of %s:\n", r.Name)
		for _, err := range r.TopErrors(3) {
			printutils.ErrFprintf(w, "%s\t%d (%.2f)%%\n", err, r.GroupedErrors[err],
				(float64(r.GroupedErrors[err])/float64(r.Failed))*100)
		}
	}
	printutils.NeutralFprintf(w, "\n")
}
