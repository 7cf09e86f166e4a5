package subcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/api"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/model"
)

func init() {
	RootCmd.AddCommand(NewLoginCommand())
}

func NewLoginCommand() *cobra.Command {
	loginCmd := &LoginCommand{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print the sign-in URL, optionally verifying a session can be established",
		Args:  cobra.NoArgs,
		RunE:  loginCmd.run,
	}

	cmd.Flags().BoolVar(&loginCmd.Check, "check", false, "follow the sign-in URL and confirm /me answers")

	return cmd
}

type LoginCommand struct {
	Check bool
}

func (l *LoginCommand) run(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, c.Engine.LoginURL())
	if !l.Check {
		return nil
	}

	if _, err := api.Fetch(cmd.Context(), c.Client, engine.PathLogin, nil, model.User{}); err != nil {
		return err
	}
	u, err := c.Engine.Me(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "signed in as %s\n", u.Email)
	return nil
}
