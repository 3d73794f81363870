package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-monitor/internal/domain"
	"github.com/couchcryptid/station-monitor/internal/observability"
	"github.com/couchcryptid/station-monitor/internal/pipeline"
)

type recordingPackager struct {
	outputs []domain.Output
	err     error
}

func (p *recordingPackager) Package(_ context.Context, w io.Writer, outputs []domain.Output) error {
	if p.err != nil {
		return p.err
	}
	p.outputs = outputs
	_, err := io.WriteString(w, "archive")
	return err
}

func photoSource(folder string, n int) pipeline.StaticSource {
	src := make(pipeline.StaticSource, 0, n)
	for i := n; i >= 1; i-- {
		name := fmt.Sprintf("IMG_%d.jpg", i)
		src = append(src, pipeline.MemoryFile(name, folder+"/"+name, []byte(name)))
	}
	return src
}

func newTestRenamer() (*pipeline.Renamer, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return pipeline.NewRenamer(domain.DefaultFallbackYear, discardLogger(), metrics), metrics
}

func TestRenamer_LoadSkipsHidden(t *testing.T) {
	r, _ := newTestRenamer()

	n, err := r.Load(context.Background(), pipeline.StaticSource{
		pipeline.MemoryFile(".DS_Store", "2024_3/.DS_Store", nil),
		pipeline.MemoryFile("IMG_1.jpg", "2024_3/IMG_1.jpg", []byte("x")),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "2024_3", r.Label())
}

func TestRenamer_LoadReadFailure(t *testing.T) {
	r, _ := newTestRenamer()

	_, err := r.Load(context.Background(), pipeline.StaticSource{{
		Name: "IMG_1.jpg",
		Read: func(context.Context) ([]byte, error) { return nil, errors.New("eof") },
	}})
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRenamer_Run(t *testing.T) {
	r, metrics := newTestRenamer()
	_, err := r.Load(context.Background(), photoSource("2024_3_4_5_6_7_8_9_10_11_12", 10))
	require.NoError(t, err)

	pkg := &recordingPackager{}
	var buf bytes.Buffer
	plan, err := r.Run(context.Background(), "", pkg, &buf)
	require.NoError(t, err)

	assert.Equal(t, "2024_3_4_5_6_7_8_9_10_11_12", plan.Label)
	assert.Equal(t, 5, plan.PerMonth)
	require.Len(t, pkg.outputs, 10)
	assert.Equal(t, "2024_3_4_5_6_7_8_9_10_11_12_Renamed/January_2024_1.jpg", pkg.outputs[0].Path)
	assert.Equal(t, []byte("IMG_1.jpg"), pkg.outputs[0].Content)
	assert.Equal(t, "2024_3_4_5_6_7_8_9_10_11_12_Renamed/February_2024_5.jpg", pkg.outputs[9].Path)

	var names []string
	for _, a := range plan.Assignments {
		names = append(names, a.File.Name+" -> "+a.Name)
	}
	want := []string{
		"IMG_1.jpg -> January_2024_1.jpg",
		"IMG_2.jpg -> January_2024_2.jpg",
		"IMG_3.jpg -> January_2024_3.jpg",
		"IMG_4.jpg -> January_2024_4.jpg",
		"IMG_5.jpg -> January_2024_5.jpg",
		"IMG_6.jpg -> February_2024_1.jpg",
		"IMG_7.jpg -> February_2024_2.jpg",
		"IMG_8.jpg -> February_2024_3.jpg",
		"IMG_9.jpg -> February_2024_4.jpg",
		"IMG_10.jpg -> February_2024_5.jpg",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte("IMG_10.jpg"), pkg.outputs[9].Content)
	assert.Equal(t, "archive", buf.String())
	assert.InDelta(t, 10, testutil.ToFloat64(metrics.RenamerFiles), 0)
}

func TestRenamer_RunExplicitLabel(t *testing.T) {
	r, _ := newTestRenamer()
	_, err := r.Load(context.Background(), photoSource("whatever", 2))
	require.NoError(t, err)

	plan, err := r.Run(context.Background(), "2023", &recordingPackager{}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2023, plan.Year)
	assert.Equal(t, "January_2023_1.jpg", plan.Assignments[0].Name)
}

func TestRenamer_RunWithoutFiles(t *testing.T) {
	r, _ := newTestRenamer()
	_, err := r.Run(context.Background(), "", &recordingPackager{}, io.Discard)
	require.ErrorIs(t, err, pipeline.ErrNoFiles)
}

func TestRenamer_RunAllMonthsSkipped(t *testing.T) {
	r, metrics := newTestRenamer()
	_, err := r.Load(context.Background(), photoSource("x", 1))
	require.NoError(t, err)

	pkg := &recordingPackager{}
	_, err = r.Run(context.Background(), "2024_1_2_3_4_5_6_7_8_9_10_11_12", pkg, io.Discard)
	require.ErrorIs(t, err, domain.ErrNoAvailableMonths)
	assert.Nil(t, pkg.outputs, "nothing is packaged")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RenamerErrors), 0)
}

func TestRenamer_RunPackagerError(t *testing.T) {
	r, _ := newTestRenamer()
	_, err := r.Load(context.Background(), photoSource("2024", 1))
	require.NoError(t, err)

	boom := errors.New("disk full")
	_, err = r.Run(context.Background(), "", &recordingPackager{err: boom}, io.Discard)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "2024_Processed.zip")
}

func TestRenamer_ResetMatchesFreshInstance(t *testing.T) {
	r, _ := newTestRenamer()
	fresh, _ := newTestRenamer()
	_, err := r.Load(context.Background(), photoSource("2024", 3))
	require.NoError(t, err)

	r.Reset()

	assert.Equal(t, fresh.Len(), r.Len())
	assert.Equal(t, fresh.Label(), r.Label())
	freshPlan, _ := fresh.Plan("")
	plan, _ := r.Plan("")
	assert.Equal(t, freshPlan, plan)
}
