package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/sorting"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewHistoryCommand())
}

func NewHistoryCommand() *cobra.Command {
	historyCmd := &HistoryCommand{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a day's finished builds for a region",
		Args:  cobra.NoArgs,
		RunE:  historyCmd.run,
	}

	cmd.Flags().StringVarP(&historyCmd.Region, "region", "r", view.DefaultRegion, "region code")
	cmd.Flags().StringVarP(&historyCmd.Date, "date", "d", "", "build day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&historyCmd.Sort, "sort", "s", string(sorting.FieldPosition), "sort field")
	cmd.Flags().BoolVar(&historyCmd.Desc, "desc", false, "sort descending")

	return cmd
}

type HistoryCommand struct {
	Region string
	Date   string
	Sort   string
	Desc   bool
}

func (h *HistoryCommand) run(cmd *cobra.Command, args []string) error {
	field, err := sorting.ParseField(h.Sort)
	if err != nil {
		return err
	}

	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen, err := openAssignScreen(cmd, c, h.Region, h.Date)
	if err != nil {
		return err
	}
	dir := sorting.Ascending
	if h.Desc {
		dir = sorting.Descending
	}
	screen.SetSort(sorting.State{Field: field, Direction: dir})

	r := newRenderer(cmd)
	out := cmd.OutOrStdout()
	fmt.Fprint(out, r.ServerTable(fmt.Sprintf("%s unassigned on %s", screen.Region(), screen.Date()), screen.Unassigned(), screen.Sort(), nil))
	fmt.Fprint(out, r.ServerTable(fmt.Sprintf("%s assigned on %s", screen.Region(), screen.Date()), screen.Assigned(), sorting.State{}, nil))
	return nil
}
