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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/mcp"
)

func init() {
	RootCmd.AddCommand(NewMCPServerCommand())
}

func NewMCPServerCommand() *cobra.Command {
	mcpCmd := &MCPServerCommand{}

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start MCP server exposing the build dashboard to AI assistants",
		Long: `Start an MCP (Model Context Protocol) server on stdio that exposes the
build dashboard to AI assistants.

The server provides tools for:
  - build_status: Per-region build counters
  - rack_layout: Racks and slots of one region
  - list_unassigned: Finished builds awaiting assignment
  - assign_servers: Assign servers by dbid
  - push_preconfig: Push a depot's preconfig templates
  - server_details: Full attributes of one server
  - reachability: Backend mode and reachability

And resources:
  - buildboard://status: Build counters and backend state`,
		Args: cobra.NoArgs,
		RunE: mcpCmd.run,
	}

	cmd.Flags().BoolVar(&mcpCmd.UseMemoryStore, "memory", false, "serve built-in data in resilient mode without a backend")

	return cmd
}

type MCPServerCommand struct {
	UseMemoryStore bool
}

func (m *MCPServerCommand) run(cmd *cobra.Command, args []string) error {
	if m.UseMemoryStore {
		logrus.Info("using built-in data in resilient mode")
		globals.mode = "resilient"
	}

	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	logrus.Info("starting MCP server on stdio...")
	server := mcp.NewBuildboardMCPServer(c, Version)
	return server.ServeStdio()
}
