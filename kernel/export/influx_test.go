package export

import (
	"context"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suntrap/buildboard/kernel/model"
)

type mockWriteAPI struct {
	err     error
	written []*write.Point
}

func (m *mockWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	m.written = append(m.written, point...)
	return m.err
}

func (m *mockWriteAPI) WriteRecord(ctx context.Context, line ...string) error { return nil }
func (m *mockWriteAPI) EnableBatching()                                       {}
func (m *mockWriteAPI) Flush(ctx context.Context) error                       { return nil }

func testInventory() model.RegionInventory {
	return model.RegionInventory{
		"dub": {{RackID: "3-1", Hostname: "h3", DBID: "3", PercentBuilt: 6}},
		"cbg": {
			{RackID: "1-E", Hostname: "h1", DBID: "1", PercentBuilt: 100},
			{RackID: "S1-C", Hostname: "h2", DBID: "2", PercentBuilt: 45, Status: model.BuildStatusFailed},
		},
	}
}

func tag(p *write.Point, key string) string {
	for _, t := range p.TagList() {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

func TestPoints(t *testing.T) {
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	points := Points(testInventory(), at)
	require.Len(t, points, 5)

	assert.Equal(t, MeasurementServer, points[0].Name())
	assert.Equal(t, "cbg", tag(points[0], "region"))
	assert.Equal(t, "h1", tag(points[0], "hostname"))
	assert.Equal(t, MeasurementRegion, points[2].Name())
	assert.Equal(t, "cbg", tag(points[2], "region"))
	assert.Equal(t, "dub", tag(points[4], "region"))
	assert.Equal(t, at, points[0].Time())
}

func TestInfluxExporter_Export(t *testing.T) {
	w := &mockWriteAPI{}
	e := NewInfluxExporterWithAPI(w)
	defer e.Close()

	n, err := e.Export(context.Background(), testInventory(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, w.written, 5)

	n, err = e.Export(context.Background(), model.RegionInventory{}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInfluxExporter_WriteError(t *testing.T) {
	w := &mockWriteAPI{err: errors.New("unauthorized")}
	_, err := NewInfluxExporterWithAPI(w).Export(context.Background(), testInventory(), time.Now())
	assert.ErrorContains(t, err, "unauthorized")
}

func TestNewInfluxExporter_RequiresConfig(t *testing.T) {
	_, err := NewInfluxExporter(model.InfluxConfig{URL: "http://localhost:8086"})
	assert.Error(t, err)

	e, err := NewInfluxExporter(model.InfluxConfig{URL: "http://localhost:8086", Org: "o", Bucket: "b"})
	require.NoError(t, err)
	e.Close()
}
