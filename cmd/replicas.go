package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fitreport/internal/analysis"
	"github.com/KaramelBytes/fitreport/internal/results"
	"github.com/KaramelBytes/fitreport/internal/workspace"
)

var (
	replicasSort     string
	replicasCutoff   float64
	replicasMarkdown bool
)

var replicasCmd = &cobra.Command{
	Use:   "replicas <fit-folder>",
	Short: "List the replicas of a fit with their status and quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		cutoff := c.GEFCutoff
		if cmd.Flags().Changed("cutoff") {
			cutoff = replicasCutoff
		}
		fitDir := args[0]
		listed, err := results.ListReplicaFolders(fitDir, c.ExcludedFolders())
		if err != nil {
			return err
		}
		ids := listed[:0]
		for _, id := range listed {
			if !workspace.IsReport(filepath.Join(fitDir, id)) {
				ids = append(ids, id)
			}
		}
		switch replicasSort {
		case "listing":
		case "numeric":
			results.SortNumeric(ids)
		default:
			return fmt.Errorf("invalid --sort %q (use listing or numeric)", replicasSort)
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no replicas)")
			return nil
		}

		records := make([]results.Record, 0, len(ids))
		for _, id := range ids {
			rec, err := results.LoadReplicaFile(filepath.Join(fitDir, id, c.ResultFile), id)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		sel := analysis.SelectGood(records, cutoff)
		good := make(map[string]bool, len(sel.IDs))
		for _, id := range sel.IDs {
			good[id] = true
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"replica", "status", "global error function", "global chi2", "good"})
		for _, rec := range records {
			chi2 := "-"
			if rec.HasGlobalChi2 {
				chi2 = strconv.FormatFloat(rec.GlobalChi2, 'g', 6, 64)
			}
			mark := ""
			if good[rec.ID] {
				mark = "✓"
			}
			tw.AppendRow(table.Row{rec.ID, rec.Status.String(), strconv.FormatFloat(rec.GlobalErrorFunction, 'g', 6, 64), chi2, mark})
		}
		tw.AppendFooter(table.Row{"", "", "", "good", fmt.Sprintf("%d/%d", len(sel.IDs), sel.Candidates)})

		if replicasMarkdown {
			fmt.Fprintln(cmd.OutOrStdout(), tw.RenderMarkdown())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replicasCmd)
	replicasCmd.Flags().StringVar(&replicasSort, "sort", "listing", "row order: listing (filesystem order) or numeric")
	replicasCmd.Flags().Float64Var(&replicasCutoff, "cutoff", 0, "global error function cutoff (default from config: 4)")
	replicasCmd.Flags().BoolVar(&replicasMarkdown, "markdown", false, "print the table as Markdown")
}
