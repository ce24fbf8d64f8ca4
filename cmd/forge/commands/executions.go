package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewExecutionsCommand creates the executions command group.
func NewExecutionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "executions",
		Aliases: []string{"execution", "execs"},
		Short:   "Manage executions",
		Long:    "List, inspect, and cancel script executions",
	}

	cmd.AddCommand(newExecutionsListCommand())
	cmd.AddCommand(newExecutionsGetCommand())
	cmd.AddCommand(newExecutionsCancelCommand())
	cmd.AddCommand(newExecutionsResultCommand())
	cmd.AddCommand(newExecutionsLogsCommand())

	return cmd
}

func newExecutionsListCommand() *cobra.Command {
	var (
		scriptGUID string
		allPages   bool
		perPage    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		Long:  "List executions, optionally scoped to a single script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecutionsListCommand(cmd, scriptGUID, allPages, perPage)
		},
	}

	cmd.Flags().StringVar(&scriptGUID, "script", "", "only list executions of this script GUID")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func runExecutionsListCommand(cmd *cobra.Command, scriptGUID string, allPages bool, perPage int) error {
	client, err := CreateClient(cmd.Flag("api").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := runforge.NewQueryParams()
	params.PerPage = perPage

	var page *runforge.CursorPage[runforge.Execution, runforge.Execution]
	if scriptGUID != "" {
		page, err = client.Executions().ListForScript(ctx, scriptGUID, params)
	} else {
		page, err = client.Executions().List(ctx, params)
	}

	if err != nil {
		return fmt.Errorf("failed to list executions: %w", err)
	}

	executions := page.Items()

	if allPages {
		executions = executions[:0]
		for execution, err := range page.All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to fetch executions: %w", err)
			}

			executions = append(executions, execution)
		}
	}

	return outputExecutions(executions, page, allPages)
}

func outputExecutions(executions []runforge.Execution, page *runforge.CursorPage[runforge.Execution, runforge.Execution], allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(executions)
	case OutputFormatYAML:
		return StandardYAMLRenderer(executions)
	default:
		return renderExecutionTable(executions, page, allPages)
	}
}

func renderExecutionTable(executions []runforge.Execution, page *runforge.CursorPage[runforge.Execution, runforge.Execution], allPages bool) error {
	if len(executions) == 0 {
		_, _ = os.Stdout.WriteString("No executions found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Script", "Agent", "State", "Triggered By", "Started")

	for _, execution := range executions {
		_ = table.Append(execution.GUID, execution.ScriptGUID, execution.AgentGUID,
			execution.State, execution.TriggeredBy,
			formatDate(execution.StartedAt))
	}

	_ = table.Render()

	if !allPages && page.HasNextPage() {
		_, _ = os.Stdout.WriteString("\nMore executions available. Use --all to fetch all pages.\n")
	}

	return nil
}

func newExecutionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get EXECUTION_GUID",
		Short: "Get execution details",
		Long:  "Display detailed information about a specific execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			execution, err := client.Executions().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get execution: %w", err)
			}

			return outputExecutionDetails(execution)
		},
	}
}

func outputExecutionDetails(execution *runforge.Execution) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(execution)
	case OutputFormatYAML:
		return StandardYAMLRenderer(execution)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("GUID", execution.GUID)
		_ = table.Append("Script", execution.ScriptGUID)
		_ = table.Append("Agent", execution.AgentGUID)
		_ = table.Append("State", execution.State)
		_ = table.Append("Triggered By", execution.TriggeredBy)
		_ = table.Append("Started", formatDate(execution.StartedAt))
		_ = table.Append("Finished", formatDate(execution.FinishedAt))

		if len(execution.Result) > 0 {
			_ = table.Append("Result", string(execution.Result))
		}

		_ = table.Render()

		return nil
	}
}

func newExecutionsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel EXECUTION_GUID",
		Short: "Cancel an execution",
		Long:  "Request cancellation of a running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			execution, err := client.Executions().Cancel(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel execution: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Execution %s is %s\n", execution.GUID, execution.State)

			return nil
		},
	}
}

func newExecutionsResultCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "result EXECUTION_GUID",
		Short: "Wait for an execution result",
		Long:  "Wait on the execution's result channel until the platform delivers the final result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			execution, err := client.Executions().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get execution: %w", err)
			}

			var opts *runforge.StreamOptions
			if timeout > 0 {
				opts = &runforge.StreamOptions{Timeout: timeout}
			}

			result, err := client.Executions().Result(ctx, execution, opts)
			if err != nil {
				return fmt.Errorf("failed to receive result: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "%s\n", result)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "idle timeout for the result channel")

	return cmd
}

func newExecutionsLogsCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "logs EXECUTION_GUID",
		Short: "Stream execution logs",
		Long:  "Stream log lines from a running execution until its log stream closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			execution, err := client.Executions().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get execution: %w", err)
			}

			var opts *runforge.StreamOptions
			if timeout > 0 {
				opts = &runforge.StreamOptions{Timeout: timeout}
			}

			for line, err := range client.Executions().Logs(ctx, execution, opts) {
				if err != nil {
					return fmt.Errorf("log stream failed: %w", err)
				}

				_, _ = fmt.Fprintf(os.Stdout, "%s [%s] %s\n",
					line.Timestamp.Format(time.RFC3339), line.Stream, line.Message)
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "idle timeout for the log stream")

	return cmd
}
