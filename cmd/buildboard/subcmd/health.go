package subcmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/health"
)

func init() {
	RootCmd.AddCommand(NewHealthCommand())
}

func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the backend health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cache := health.NewCache(health.HTTPProber(cfg.BackendURL, nil), health.WithTimeout(cfg.RequestTimeout))
			reachable := cache.Probe(cmd.Context())
			st := cache.State()

			fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s (mode %s, checked %s)\n",
				cfg.BackendURL, health.Path, st.Reachability, cfg.Mode, st.CheckedAt.Format("15:04:05"))
			if !reachable {
				return errors.Errorf("backend [%s] is unreachable", cfg.BackendURL)
			}
			return nil
		},
	}
}
