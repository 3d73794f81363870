// Package report renders station snapshots as CSV exports and terminal tables.
package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

// CSVHeader is the first line of every export.
var CSVHeader = []string{"Station ID", "Transmission", "Status"}

// CSVFileName is the suggested download name.
const CSVFileName = "station_status_report.csv"

// WriteCSV writes one quoted row per station in snapshot order, each
// terminated by "\n". encoding/csv only quotes fields that need it, and the
// export quotes every field, so rows are assembled here.
func WriteCSV(w io.Writer, snap domain.Snapshot) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, CSVHeader...)
	for _, st := range snap.Stations {
		writeRow(bw, st.Key, st.Transmission, string(st.Status))
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
