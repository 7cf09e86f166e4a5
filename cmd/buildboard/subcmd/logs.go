package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewLogsCommand())
}

func NewLogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logs <hostname>",
		Short: "Print the build log of one server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext()
			if err != nil {
				return err
			}
			defer c.Close()

			log, err := c.Engine.BuildLog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), log)
			return nil
		},
	}
}
