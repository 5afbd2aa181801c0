package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "reclass.dev/pkg/reclass/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayRunInfo prints the run configuration.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, source, target string, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Transforming %s -> %s with %d worker(s)\n", source, target, threads)
}

// DisplaySummary renders the per-outcome summary table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, results []m.PipelineResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(results))

	return nil
}

// DisplayFailure prints the aggregate failure of a run.
func (s *SimpleUI) DisplayFailure(ctx context.Context, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return
	}

	s.printf("run failed: %v\n", err)
}

func renderSummaryTable(results []m.PipelineResult) string {
	counts := make(map[m.Outcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}

	outcomes := make([]m.Outcome, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Outcome", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, o := range outcomes {
		table.Append([]string{o.String(), fmt.Sprintf("%d", counts[o])})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", len(results))})
	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
