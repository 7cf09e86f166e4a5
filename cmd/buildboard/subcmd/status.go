package subcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewStatusCommand())
}

func NewStatusCommand() *cobra.Command {
	statusCmd := &StatusCommand{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show live build progress as rack grids",
		Args:  cobra.NoArgs,
		RunE:  statusCmd.run,
	}

	cmd.Flags().StringVarP(&statusCmd.Region, "region", "r", "", "only show one region (CBG, DUB, DAL)")
	cmd.Flags().BoolVar(&statusCmd.SummaryOnly, "summary", false, "print counters only")

	return cmd
}

type StatusCommand struct {
	Region      string
	SummaryOnly bool
}

func (s *StatusCommand) run(cmd *cobra.Command, args []string) error {
	regions := model.Regions()
	if s.Region != "" {
		r, err := model.GetRegion(s.Region)
		if err != nil {
			return err
		}
		regions = []model.Region{r}
	}

	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen := view.NewBuildStatusScreen(c.Engine)
	if err := screen.Load(cmd.Context()); err != nil {
		return err
	}

	r := newRenderer(cmd)
	out := cmd.OutOrStdout()
	for _, region := range regions {
		fmt.Fprint(out, r.Summary(region.Code, screen.Summary(region.Code)))
		if !s.SummaryOnly {
			fmt.Fprintln(out, r.RackGrid(screen.Racks(region.Code)))
		}
	}
	if s.Region == "" {
		for _, code := range screen.Status.Snapshot().Data.Codes() {
			if _, err := model.GetRegion(code); err != nil {
				fmt.Fprintf(out, "unregistered region %s skipped\n", strings.ToUpper(code))
			}
		}
	}
	return nil
}
