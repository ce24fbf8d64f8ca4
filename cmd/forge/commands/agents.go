package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAgentsCommand creates the agents command group.
func NewAgentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agents",
		Aliases: []string{"agent"},
		Short:   "Manage agents",
		Long:    "List, create, update, and delete Runforge agents",
	}

	cmd.AddCommand(newAgentsListCommand())
	cmd.AddCommand(newAgentsGetCommand())
	cmd.AddCommand(newAgentsCreateCommand())
	cmd.AddCommand(newAgentsUpdateCommand())
	cmd.AddCommand(newAgentsDeleteCommand())
	cmd.AddCommand(newAgentsPingCommand())

	return cmd
}

func newAgentsListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Long:  "List all agents the user has access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentsListCommand(cmd, allPages, perPage)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func runAgentsListCommand(cmd *cobra.Command, allPages bool, perPage int) error {
	client, err := CreateClient(cmd.Flag("api").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := runforge.NewQueryParams()
	params.PerPage = perPage

	page, err := client.Agents().List(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	agents := page.Items()

	if allPages {
		agents = agents[:0]
		for agent, err := range page.All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to fetch agents: %w", err)
			}

			agents = append(agents, agent)
		}
	}

	return outputAgents(agents, page, allPages)
}

func outputAgents(agents []runforge.Agent, page *runforge.Page[runforge.Agent, runforge.Agent], allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(agents)
	case OutputFormatYAML:
		return StandardYAMLRenderer(agents)
	default:
		return renderAgentTable(agents, page, allPages)
	}
}

func renderAgentTable(agents []runforge.Agent, page *runforge.Page[runforge.Agent, runforge.Agent], allPages bool) error {
	if len(agents) == 0 {
		_, _ = os.Stdout.WriteString("No agents found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "GUID", "State", "Version", "Tags", "Last Seen")

	for _, agent := range agents {
		_ = table.Append(agent.Name, agent.GUID, agent.State, agent.Version,
			strings.Join(agent.Tags, ","),
			formatDate(agent.LastSeenAt))
	}

	_ = table.Render()

	if !allPages && page.HasNextPage() {
		_, _ = fmt.Fprintf(os.Stdout, "\nShowing %d of %d agents. Use --all to fetch all pages.\n",
			len(agents), page.TotalCount())
	}

	return nil
}

func newAgentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get AGENT_GUID",
		Short: "Get agent details",
		Long:  "Display detailed information about a specific agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			agent, err := client.Agents().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get agent: %w", err)
			}

			return outputAgentDetails(agent)
		},
	}
}

func outputAgentDetails(agent *runforge.Agent) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(agent)
	case OutputFormatYAML:
		return StandardYAMLRenderer(agent)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("Name", agent.Name)
		_ = table.Append("GUID", agent.GUID)
		_ = table.Append("State", agent.State)
		_ = table.Append("Version", agent.Version)
		_ = table.Append("Tags", strings.Join(agent.Tags, ","))
		_ = table.Append("Last Seen", formatDate(agent.LastSeenAt))
		_ = table.Append("Created", agent.CreatedAt.Format(dateFormat))
		_ = table.Append("Updated", agent.UpdatedAt.Format(dateFormat))

		_ = table.Render()

		return nil
	}
}

func newAgentsCreateCommand() *cobra.Command {
	var (
		name string
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent",
		Long:  "Register a new Runforge agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return ErrAgentNameRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			agent, err := client.Agents().Create(context.Background(), &runforge.AgentCreateRequest{
				Name: name,
				Tags: tags,
			})
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created agent '%s' with GUID %s\n", agent.Name, agent.GUID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "agent name (required)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags to apply")

	return cmd
}

func newAgentsUpdateCommand() *cobra.Command {
	var (
		newName string
		tags    []string
	)

	cmd := &cobra.Command{
		Use:   "update AGENT_GUID",
		Short: "Update an agent",
		Long:  "Update an existing Runforge agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.AgentUpdateRequest{}
			if cmd.Flags().Changed("name") {
				request.Name = &newName
			}

			if cmd.Flags().Changed("tags") {
				request.Tags = tags
			}

			agent, err := client.Agents().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update agent: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully updated agent '%s'\n", agent.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "new agent name")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "replacement tags")

	return cmd
}

func newAgentsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete AGENT_GUID",
		Short: "Delete an agent",
		Long:  "Deregister a Runforge agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete agent '%s'? (y/N): ", args[0])

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			err = client.Agents().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete agent: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted agent '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newAgentsPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping AGENT_GUID",
		Short: "Ping an agent",
		Long:  "Check connectivity and liveness of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			agent, err := client.Agents().Ping(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to ping agent: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Agent '%s' is %s\n", agent.Name, agent.State)

			return nil
		},
	}
}
