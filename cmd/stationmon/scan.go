package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-monitor/internal/adapter/fsys"
	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
	"github.com/couchcryptid/station-monitor/internal/report"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var filter string
	var csvPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Ingest transmission files and show station liveness",
		Long: "Ingest the given files and the files directly inside the given directories,\n" +
			"then print one row per station with its latest transmission and status.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services(cliLogger)
			if err != nil {
				return err
			}
			defer svc.close()

			summary, err := svc.monitor.ProcessBatch(cmd.Context(), fsys.NewPathSource(args...))
			if err != nil {
				return err
			}
			snap := svc.monitor.Snapshot(filter)

			if csvPath != "" {
				if err := writeCSVFile(csvPath, snap); err != nil {
					return err
				}
			}
			if asJSON {
				return writeJSON(cmd, snap)
			}
			printSummary(cmd, summary)
			return report.WriteStationTable(cmd.OutOrStdout(), snap)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show stations whose ID contains this text")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the report as CSV to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")

	return cmd
}

func printSummary(cmd *cobra.Command, s pipeline.BatchSummary) {
	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d files: %d new, %d updated, %d stale, %d skipped, %d failed\n",
		s.Files, s.Created, s.Updated, s.Stale, s.Skipped, s.Failed)
}

func writeCSVFile(path string, snap domain.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.WriteCSV(f, snap)
}
