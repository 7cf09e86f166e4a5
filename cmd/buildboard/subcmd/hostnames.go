package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewHostnamesCommand())
}

func NewHostnamesCommand() *cobra.Command {
	hostnamesCmd := &HostnamesCommand{}

	cmd := &cobra.Command{
		Use:   "hostnames [query]",
		Short: "Search the hostname index",
		Args:  cobra.MaximumNArgs(1),
		RunE:  hostnamesCmd.run,
	}

	cmd.Flags().IntVarP(&hostnamesCmd.Limit, "limit", "n", 20, "maximum matches to print (0 for all)")

	return cmd
}

type HostnamesCommand struct {
	Limit int
}

func (h *HostnamesCommand) run(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	index := view.NewHostnameIndex(c.Engine)
	if err := index.Names.Load(cmd.Context()); err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	matches := index.Search(query, h.Limit)
	for _, name := range matches {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d hostnames shown\n", len(matches), len(index.Names.Snapshot().Data))
	return nil
}
