package subcmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/render"
	"github.com/suntrap/buildboard/kernel/tracker"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewPreconfigCommand())
}

func NewPreconfigCommand() *cobra.Command {
	preconfigCmd := &PreconfigCommand{}

	cmd := &cobra.Command{
		Use:   "preconfig",
		Short: "List preconfig templates and push history",
		Args:  cobra.NoArgs,
		RunE:  preconfigCmd.list,
	}
	cmd.Flags().BoolVar(&preconfigCmd.PushedOnly, "pushed", false, "only show the push history")

	push := &cobra.Command{
		Use:   "push <depot>",
		Short: "Push a depot's preconfig templates",
		Args:  cobra.ExactArgs(1),
		RunE:  preconfigCmd.push,
	}
	cmd.AddCommand(push)

	return cmd
}

type PreconfigCommand struct {
	PushedOnly bool
}

func (p *PreconfigCommand) list(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen := view.NewPreconfigScreen(c.Engine, c.Pushes)
	if err := screen.Load(cmd.Context()); err != nil {
		return err
	}

	r := newRenderer(cmd)
	out := cmd.OutOrStdout()
	if !p.PushedOnly {
		fmt.Fprint(out, r.DepotCounts(depotCounts(screen), len(screen.Configs.Snapshot().Data)))
		fmt.Fprint(out, r.Preconfigs(screen.Configs.Snapshot().Data))
	}
	fmt.Fprint(out, r.Pushed(screen.Pushed.Snapshot().Data))
	return nil
}

func (p *PreconfigCommand) push(cmd *cobra.Command, args []string) error {
	depot, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.Wrapf(err, "invalid depot '%s'", args[0])
	}
	if _, err := model.RegionByDepot(depot); err != nil {
		return err
	}

	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen := view.NewPreconfigScreen(c.Engine, c.Pushes)
	status, err := screen.Push(cmd.Context(), depot)
	if err != nil {
		logrus.Warnf("unable to reload push history (%v)", err)
	}
	if status != tracker.Success {
		return errors.Errorf("push to depot %d (%s) failed", depot, model.RegionLabel(depot))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pushed preconfigs to depot %d (%s)\n", depot, model.RegionLabel(depot))
	if snap := screen.Pushed.Snapshot(); snap.HasData {
		fmt.Fprint(cmd.OutOrStdout(), newRenderer(cmd).Pushed(snap.Data))
	}
	return nil
}

func depotCounts(screen *view.PreconfigScreen) []render.DepotCount {
	var out []render.DepotCount
	for _, st := range screen.Stats() {
		out = append(out, render.DepotCount{Region: st.Region, Count: st.Count, Status: screen.Status(st.Region.Depot)})
	}
	return out
}
