/*
	(c) Copyright Suntrap

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/sorting"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewAssignCommand())
}

func NewAssignCommand() *cobra.Command {
	assignCmd := &AssignCommand{}

	cmd := &cobra.Command{
		Use:   "assign [dbid...]",
		Short: "Assign finished, unassigned servers",
		RunE:  assignCmd.assign,
	}

	cmd.Flags().StringVarP(&assignCmd.Region, "region", "r", view.DefaultRegion, "region code")
	cmd.Flags().StringVarP(&assignCmd.Date, "date", "d", "", "build day as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&assignCmd.All, "all", false, "select every unassigned server")
	cmd.Flags().BoolVar(&assignCmd.DryRun, "dry-run", false, "show the selection without assigning")

	return cmd
}

type AssignCommand struct {
	Region string
	Date   string
	All    bool
	DryRun bool
}

func (a *AssignCommand) assign(cmd *cobra.Command, args []string) error {
	if a.All == (len(args) > 0) {
		return errors.New("pass either dbids or --all")
	}

	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen, err := openAssignScreen(cmd, c, a.Region, a.Date)
	if err != nil {
		return err
	}

	if a.All {
		screen.ToggleAll()
	} else {
		known := make(map[string]bool)
		for _, s := range screen.Unassigned() {
			known[s.DBID] = true
		}
		for _, dbid := range args {
			if !known[dbid] {
				return errors.Errorf("dbid [%s] is not an unassigned server in %s on %s", dbid, screen.Region(), screen.Date())
			}
			if !screen.IsSelected(dbid) {
				screen.Toggle(dbid)
			}
		}
	}

	selected := screen.Selected()
	if len(selected) == 0 {
		return errors.Errorf("no unassigned servers in %s on %s", screen.Region(), screen.Date())
	}

	out := cmd.OutOrStdout()
	if a.DryRun {
		logrus.Infof("dry-run: %d server(s) selected in %s", len(selected), screen.Region())
		fmt.Fprint(out, newRenderer(cmd).ServerTable("selected", selected, screen.Sort(), nil))
		return nil
	}

	summary, err := screen.AssignSelected(cmd.Context())
	if err != nil {
		logrus.Warnf("unable to reload history after assign (%v)", err)
	}
	logrus.Infof("assign: batch '%s' finished", summary.BatchID)
	logrus.Infof("  succeeded: %d, failed: %d", len(summary.Succeeded), len(summary.Failed))

	status := map[string]string{}
	for _, id := range summary.Succeeded {
		status[id] = "success"
	}
	for _, id := range summary.Failed {
		status[id] = "failed"
	}
	for _, s := range selected {
		fmt.Fprintf(out, "%-10s %-20s %s\n", s.DBID, s.Hostname, status[s.DBID])
	}
	if len(summary.Failed) > 0 {
		return errors.Errorf("%d of %d assignment(s) failed", len(summary.Failed), summary.Total())
	}
	return nil
}

// openAssignScreen loads the history screen for region and date.
func openAssignScreen(cmd *cobra.Command, c *engine.Context, region, date string) (*view.AssignScreen, error) {
	screen := view.NewAssignScreen(c.Engine, c.Assignments, time.Now())
	screen.SetSort(sorting.State{Field: sorting.FieldPosition, Direction: sorting.Ascending})
	if err := screen.SetRegion(region); err != nil {
		return nil, err
	}
	if date != "" {
		if err := screen.SetDate(cmd.Context(), date); err != nil {
			return nil, err
		}
		return screen, nil
	}
	if err := screen.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return screen, nil
}
