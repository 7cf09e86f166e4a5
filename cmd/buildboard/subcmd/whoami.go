package subcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewWhoamiCommand())
}

func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext()
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.Engine.Me(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
			fmt.Fprintf(out, "  id:     %s\n", u.ID)
			if u.Role != "" {
				fmt.Fprintf(out, "  role:   %s\n", u.Role)
			}
			if len(u.Groups) > 0 {
				fmt.Fprintf(out, "  groups: %s\n", strings.Join(u.Groups, ", "))
			}
			return nil
		},
	}
}
