package subcmd

import (
	"encoding/json"
	"fmt"

	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/view"
)

func init() {
	RootCmd.AddCommand(NewDetailsCommand())
}

func NewDetailsCommand() *cobra.Command {
	detailsCmd := &DetailsCommand{}

	cmd := &cobra.Command{
		Use:   "details <hostname>",
		Short: "Show the full attribute set of one server",
		Args:  cobra.ExactArgs(1),
		RunE:  detailsCmd.run,
	}

	cmd.Flags().StringVarP(&detailsCmd.Query, "query", "q", "", "JSONPath expression, e.g. $.ip_address")

	return cmd
}

type DetailsCommand struct {
	Query string
}

func (d *DetailsCommand) run(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	screen := view.NewDetailScreen(c.Engine)
	if err := screen.Open(cmd.Context(), args[0]); err != nil {
		return err
	}
	details := screen.Details.Snapshot().Data

	if d.Query == "" {
		fmt.Fprint(cmd.OutOrStdout(), newRenderer(cmd).Details(details))
		return nil
	}
	v, err := queryDetails(details, d.Query)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

// queryDetails evaluates a JSONPath expression against the wire form of d.
func queryDetails(d model.ServerDetails, query string) (interface{}, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, err := jsonpath.JsonPathLookup(doc, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query '%s'", query)
	}
	return v, nil
}
