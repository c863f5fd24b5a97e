package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/coverage"
)

func coverageCmd(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "coverage <input>",
		Short: "Check parsed sections against the reference table",
		Long: `Parse a document and compare the sections and subsections found
against the reference set. The report is printed as Markdown, or JSON with
--json. The command fails when the score is below the threshold.

Example:
  clausemap coverage cesmm3.pdf
  clausemap coverage smm.txt --reference smm --threshold 0.9 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			if threshold <= 0 {
				threshold = a.config.Get().CoverageThreshold
			}

			records, set, err := a.parse(cmd.Context(), args[0], opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			report := coverage.Check(set.Table(), records, coverage.Options{Threshold: threshold})
			a.logger.Info("coverage checked", "reference", set.Name, "status", report.Status, "score", report.Score)

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				fmt.Fprintln(out, string(data))
			} else {
				fmt.Fprint(out, report.Markdown())
			}

			if !report.Passed() {
				return fmt.Errorf("coverage %s", report.Summary())
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().Bool("json", false, "print the report as JSON")
	cmd.Flags().Float64("threshold", 0, "passing score between 0 and 1 (0 uses config)")
	return cmd
}
