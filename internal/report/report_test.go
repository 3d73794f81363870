package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

var evaluatedAt = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func view(key, day string, status domain.Status) domain.StationView {
	seen, _ := time.Parse(domain.CanonicalDateLayout, day)
	return domain.StationView{
		StationRecord: domain.StationRecord{Key: key, LastSeen: seen, Transmission: day},
		Status:        status,
	}
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		EvaluatedAt: evaluatedAt,
		Stations: []domain.StationView{
			view("KASAMA MET", "2025-03-18", domain.StatusDelayed),
			view(`ODD "QUOTE"`, "2025-03-10", domain.StatusOffline),
		},
		Total:   2,
		Delayed: 1,
		Offline: 1,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testSnapshot()))

	want := `"Station ID","Transmission","Status"` + "\n" +
		`"KASAMA MET","2025-03-18","Delayed"` + "\n" +
		`"ODD ""QUOTE""","2025-03-10","Offline"` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, domain.Snapshot{}))
	assert.Equal(t, `"Station ID","Transmission","Status"`+"\n", buf.String())
}

func TestWriteStationTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStationTable(&buf, testSnapshot()))

	out := buf.String()
	assert.Contains(t, out, "KASAMA MET")
	assert.Contains(t, out, "2 days ago")
	assert.Contains(t, out, "Total 2 | Online 0 | Delayed 1 | Offline 1")
	assert.Less(t, strings.Index(out, "KASAMA MET"), strings.Index(out, "ODD"))
}

func TestWriteStationTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStationTable(&buf, domain.Snapshot{}))
	assert.Equal(t, "No stations found\n", buf.String())
}

func TestWritePlanTable(t *testing.T) {
	files := []domain.File{
		{Name: "IMG_1.jpg", Content: make([]byte, 2048)},
		{Name: "IMG_2.jpg", Content: make([]byte, 1000)},
	}
	plan, err := domain.Plan(files, "2024", 2026)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePlanTable(&buf, plan))

	out := strings.ToLower(buf.String())
	for _, want := range []string{
		"img_1.jpg", "2024_renamed/january_2024_1.jpg", "2.0 kb",
		"img_2.jpg", "2024_renamed/february_2024_1.jpg", "1.0 kb",
		"2 files", "3.0 kb",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "img_1.jpg"), strings.Index(out, "img_2.jpg"))
}

func TestWritePlanTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlanTable(&buf, domain.DistributionPlan{}))
	assert.Equal(t, "No files to rename\n", buf.String())
}
