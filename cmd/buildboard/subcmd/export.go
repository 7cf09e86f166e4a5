package subcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/export"
)

func init() {
	RootCmd.AddCommand(NewExportCommand())
}

func NewExportCommand() *cobra.Command {
	exportCmd := &ExportCommand{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a build-status snapshot to InfluxDB",
		Args:  cobra.NoArgs,
		RunE:  exportCmd.run,
	}

	cmd.Flags().StringVar(&exportCmd.URL, "influx-url", "", "InfluxDB URL (overrides config)")
	cmd.Flags().StringVar(&exportCmd.Token, "influx-token", "", "InfluxDB token (overrides config)")
	cmd.Flags().StringVar(&exportCmd.Org, "influx-org", "", "InfluxDB organization (overrides config)")
	cmd.Flags().StringVar(&exportCmd.Bucket, "influx-bucket", "", "InfluxDB bucket (overrides config)")
	cmd.Flags().BoolVar(&exportCmd.DryRun, "dry-run", false, "build the points without writing them")

	return cmd
}

type ExportCommand struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	DryRun bool
}

func (e *ExportCommand) run(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	inv, err := c.Engine.BuildStatus(cmd.Context())
	if err != nil {
		return err
	}
	now := time.Now()

	if e.DryRun {
		points := export.Points(inv, now)
		logrus.Infof("dry-run: %d points for %d servers", len(points), inv.Count())
		for _, p := range points {
			var tags []string
			for _, t := range p.TagList() {
				tags = append(tags, t.Key+"="+t.Value)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p.Name(), strings.Join(tags, ","))
		}
		return nil
	}

	influx := c.Config.Influx
	if e.URL != "" {
		influx.URL = e.URL
	}
	if e.Token != "" {
		influx.Token = e.Token
	}
	if e.Org != "" {
		influx.Org = e.Org
	}
	if e.Bucket != "" {
		influx.Bucket = e.Bucket
	}

	exporter, err := export.NewInfluxExporter(influx)
	if err != nil {
		return err
	}
	defer exporter.Close()

	n, err := exporter.Export(cmd.Context(), inv, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d points to %s/%s\n", n, influx.URL, influx.Bucket)
	return nil
}
