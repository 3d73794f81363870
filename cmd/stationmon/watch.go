package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/station-monitor/internal/adapter/fsys"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
	"github.com/couchcryptid/station-monitor/internal/report"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Rescan a folder whenever its contents change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services(cliLogger)
			if err != nil {
				return err
			}
			defer svc.close()

			out := cmd.OutOrStdout()
			w := pipeline.NewWatcher(svc.monitor, fsys.NewPathSource(args[0]), svc.clock, svc.cfg.WatchInterval, svc.logger,
				func(s pipeline.BatchSummary) {
					fmt.Fprintln(out)
					printSummary(cmd, s)
					if err := report.WriteStationTable(out, svc.monitor.Snapshot(filter)); err != nil {
						svc.logger.Warn("render table failed", "error", err)
					}
				})
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show stations whose ID contains this text")

	return cmd
}
