package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-monitor/internal/adapter/fsys"
	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
	"github.com/couchcryptid/station-monitor/internal/report"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var label string
	var outPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename DIR",
		Short: "Distribute a photo folder across months and package it as a zip",
		Long: "The folder name (or --label) is read as YEAR_SKIP_SKIP..., e.g. 2024_6_7\n" +
			"spreads the photos over every month of 2024 except June and July.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services(cliLogger)
			if err != nil {
				return err
			}
			defer svc.close()

			r := pipeline.NewRenamer(svc.cfg.FallbackYear, svc.logger, svc.metrics)
			n, err := r.Load(cmd.Context(), fsys.NewPathSource(args[0]))
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%s: %w", args[0], pipeline.ErrNoFiles)
			}
			if label == "" {
				label = r.Label()
			}

			if dryRun {
				plan, err := r.Plan(label)
				if err != nil {
					return err
				}
				return printPlan(cmd, plan)
			}

			if outPath == "" {
				outPath = domain.ArchiveName(label)
			}
			plan, size, err := writeArchive(cmd, r, label, svc.packager, outPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d files, %d per month, %s)\n",
				outPath, len(plan.Assignments), plan.PerMonth, humanize.Bytes(uint64(size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Folder label to plan with (defaults to the folder name)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Archive path (defaults to {label}_Processed.zip)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without writing an archive")

	return cmd
}

func printPlan(cmd *cobra.Command, plan domain.DistributionPlan) error {
	out := cmd.OutOrStdout()
	months := make([]string, len(plan.AvailableMonths))
	for i, m := range plan.AvailableMonths {
		months[i] = m.String()
	}
	fmt.Fprintf(out, "Year %d, %d per month across %v\n", plan.Year, plan.PerMonth, months)
	return report.WritePlanTable(out, plan)
}

// writeArchive packages into a temporary file next to outPath and renames it
// into place, so a failed run leaves no partial archive.
func writeArchive(cmd *cobra.Command, r *pipeline.Renamer, label string, pkg pipeline.Packager, outPath string) (domain.DistributionPlan, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".stationmon-*.zip")
	if err != nil {
		return domain.DistributionPlan{}, 0, fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	plan, err := r.Run(cmd.Context(), label, pkg, tmp)
	if err != nil {
		_ = tmp.Close()
		return plan, 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		_ = tmp.Close()
		return plan, 0, err
	}
	if err := tmp.Close(); err != nil {
		return plan, 0, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return plan, 0, fmt.Errorf("move archive into place: %w", err)
	}
	return plan, info.Size(), nil
}
