package archive

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

var stamp = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return stamp }

func TestZipPackager_Package(t *testing.T) {
	outputs := []domain.Output{
		{Path: "2024_Renamed/January_2024_1.jpg", Content: []byte("first")},
		{Path: "2024_Renamed/January_2024_2.png", Content: []byte("second")},
	}

	var buf bytes.Buffer
	require.NoError(t, NewZipPackager(fixedNow).Package(context.Background(), &buf, outputs))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	for i, f := range zr.File {
		assert.Equal(t, outputs[i].Path, f.Name)
		assert.True(t, f.Modified.Equal(stamp))

		rc, err := f.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		assert.Equal(t, outputs[i].Content, got)
	}
}

func TestZipPackager_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewZipPackager(fixedNow).Package(context.Background(), &buf, nil))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestZipPackager_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewZipPackager(fixedNow).Package(ctx, io.Discard, []domain.Output{{Path: "a.jpg"}})
	require.ErrorIs(t, err, context.Canceled)
}
