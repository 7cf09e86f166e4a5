package export

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/topology"
)

const (
	MeasurementServer = "build_progress"
	MeasurementRegion = "build_summary"
)

// InfluxExporter writes build-status snapshots to an InfluxDB bucket.
type InfluxExporter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewInfluxExporter(cfg model.InfluxConfig) (*InfluxExporter, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influx url, org and bucket are required")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxExporter{client: client, writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket)}, nil
}

// NewInfluxExporterWithAPI writes through w and owns no client.
func NewInfluxExporterWithAPI(w api.WriteAPIBlocking) *InfluxExporter {
	return &InfluxExporter{writeAPI: w}
}

// Export writes one point per server plus one summary point per region.
func (e *InfluxExporter) Export(ctx context.Context, inv model.RegionInventory, at time.Time) (int, error) {
	points := Points(inv, at)
	if len(points) == 0 {
		return 0, nil
	}
	if err := e.writeAPI.WritePoint(ctx, points...); err != nil {
		return 0, errors.Wrapf(err, "error writing %d points", len(points))
	}
	pfxlog.Logger().Infof("exported %d points for %d regions", len(points), len(inv))
	return len(points), nil
}

func (e *InfluxExporter) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// Points builds the server and region points for inv, regions in code order.
func Points(inv model.RegionInventory, at time.Time) []*write.Point {
	var points []*write.Point
	for _, code := range inv.Codes() {
		servers := inv[code]
		for _, s := range servers {
			points = append(points, influxdb2.NewPointWithMeasurement(MeasurementServer).
				AddTag("region", code).
				AddTag("hostname", s.Hostname).
				AddTag("rack", s.RackID).
				AddField("dbid", s.DBID).
				AddField("percent_built", s.Percent()).
				AddField("progress", s.Progress().String()).
				AddField("assigned", s.IsAssigned()).
				SetTime(at))
		}
		sum := topology.Summarize(servers)
		points = append(points, influxdb2.NewPointWithMeasurement(MeasurementRegion).
			AddTag("region", code).
			AddField("total", sum.Total).
			AddField("complete", sum.Complete).
			AddField("failed", sum.Failed).
			AddField("building", sum.Building).
			SetTime(at))
	}
	return points
}
