package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

// newTable returns a rounded table whose columns take aligns in order.
// Headers stay left aligned.
func newTable(header table.Row, aligns ...text.Align) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, len(aligns))
	for i, align := range aligns {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// WriteStationTable prints the station table followed by the KPI line.
func WriteStationTable(w io.Writer, snap domain.Snapshot) error {
	if snap.Total == 0 {
		_, err := fmt.Fprintln(w, "No stations found")
		return err
	}
	tw := newTable(table.Row{"Station", "Transmission", "Age", "Status"},
		text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft)
	for _, st := range snap.Stations {
		age := humanize.RelTime(st.LastSeen, snap.EvaluatedAt, "ago", "from now")
		tw.AppendRow(table.Row{st.Key, st.Transmission, age, string(st.Status)})
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", tw.Render(), Summary(snap))
	return err
}

// Summary is the one-line KPI count.
func Summary(snap domain.Snapshot) string {
	return fmt.Sprintf("Total %d | Online %d | Delayed %d | Offline %d (as of %s)",
		snap.Total, snap.Online, snap.Delayed, snap.Offline, snap.EvaluatedAt.Format(time.DateTime))
}

// WritePlanTable prints each assignment as original name, archive path and
// size, with a footer totalling the batch.
func WritePlanTable(w io.Writer, plan domain.DistributionPlan) error {
	if len(plan.Assignments) == 0 {
		_, err := fmt.Fprintln(w, "No files to rename")
		return err
	}
	tw := newTable(table.Row{"Original", "Renamed", "Size"},
		text.AlignLeft, text.AlignLeft, text.AlignRight)

	var total uint64
	for _, a := range plan.Assignments {
		size := uint64(len(a.File.Content))
		total += size
		tw.AppendRow(table.Row{a.File.Name, domain.OutputPath(plan.Label, a.Name), humanize.Bytes(size)})
	}
	tw.AppendFooter(table.Row{humanize.Comma(int64(len(plan.Assignments))) + " files", "", humanize.Bytes(total)})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
