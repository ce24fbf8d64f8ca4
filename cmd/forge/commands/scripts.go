package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewScriptsCommand creates the scripts command group.
func NewScriptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scripts",
		Aliases: []string{"script"},
		Short:   "Manage scripts",
		Long:    "List, create, update, delete, and run Runforge scripts",
	}

	cmd.AddCommand(newScriptsListCommand())
	cmd.AddCommand(newScriptsGetCommand())
	cmd.AddCommand(newScriptsCreateCommand())
	cmd.AddCommand(newScriptsUpdateCommand())
	cmd.AddCommand(newScriptsDeleteCommand())
	cmd.AddCommand(newScriptsRunCommand())

	return cmd
}

func newScriptsListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scripts",
		Long:  "List all scripts the user has access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScriptsListCommand(cmd, allPages, perPage)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func runScriptsListCommand(cmd *cobra.Command, allPages bool, perPage int) error {
	client, err := CreateClient(cmd.Flag("api").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := runforge.NewQueryParams()
	params.PerPage = perPage

	page, err := client.Scripts().List(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list scripts: %w", err)
	}

	scripts := page.Items()

	if allPages {
		scripts = scripts[:0]
		for script, err := range page.All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to fetch scripts: %w", err)
			}

			scripts = append(scripts, script)
		}
	}

	return outputScripts(scripts, page, allPages)
}

func outputScripts(scripts []*runforge.Script, page *runforge.Page[runforge.ScriptResource, *runforge.Script], allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(scripts)
	case OutputFormatYAML:
		return StandardYAMLRenderer(scripts)
	default:
		return renderScriptTable(scripts, page, allPages)
	}
}

func renderScriptTable(scripts []*runforge.Script, page *runforge.Page[runforge.ScriptResource, *runforge.Script], allPages bool) error {
	if len(scripts) == 0 {
		_, _ = os.Stdout.WriteString("No scripts found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "GUID", "Language", "Agent", "Created")

	for _, script := range scripts {
		agent := script.AgentGUID
		if agent == "" {
			agent = "any"
		}

		_ = table.Append(script.Name, script.GUID, script.Language, agent,
			script.CreatedAt.Format(dateFormat))
	}

	_ = table.Render()

	if !allPages && page.HasNextPage() {
		_, _ = fmt.Fprintf(os.Stdout, "\nShowing %d of %d scripts. Use --all to fetch all pages.\n",
			len(scripts), page.TotalCount())
	}

	return nil
}

func newScriptsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SCRIPT_GUID",
		Short: "Get script details",
		Long:  "Display detailed information about a specific script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			script, err := client.Scripts().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get script: %w", err)
			}

			return outputScriptDetails(script)
		},
	}
}

func outputScriptDetails(script *runforge.Script) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(script)
	case OutputFormatYAML:
		return StandardYAMLRenderer(script)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("Name", script.Name)
		_ = table.Append("GUID", script.GUID)
		_ = table.Append("Language", script.Language)
		_ = table.Append("Agent", script.AgentGUID)
		_ = table.Append("Timeout (ms)", fmt.Sprintf("%d", script.TimeoutMS))
		_ = table.Append("Created", script.CreatedAt.Format(dateFormat))
		_ = table.Append("Updated", script.UpdatedAt.Format(dateFormat))

		_ = table.Render()

		return nil
	}
}

func newScriptsCreateCommand() *cobra.Command {
	var (
		name      string
		language  string
		file      string
		agentGUID string
		timeoutMS int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a script",
		Long:  "Create a new Runforge script from a local file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return ErrScriptNameRequired
			}

			content, err := readScriptFile(file)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			script, err := client.Scripts().Create(context.Background(), &runforge.ScriptCreateRequest{
				Name:      name,
				Language:  language,
				Content:   content,
				AgentGUID: agentGUID,
				TimeoutMS: timeoutMS,
			})
			if err != nil {
				return fmt.Errorf("failed to create script: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created script '%s' with GUID %s\n", script.Name, script.GUID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "script name (required)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "script language")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the script source file")
	cmd.Flags().StringVar(&agentGUID, "agent", "", "pin the script to an agent GUID")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 0, "execution timeout in milliseconds")

	return cmd
}

func newScriptsUpdateCommand() *cobra.Command {
	var (
		newName   string
		file      string
		agentGUID string
		timeoutMS int
	)

	cmd := &cobra.Command{
		Use:   "update SCRIPT_GUID",
		Short: "Update a script",
		Long:  "Update an existing Runforge script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.ScriptUpdateRequest{}
			if cmd.Flags().Changed("name") {
				request.Name = &newName
			}

			if cmd.Flags().Changed("file") {
				content, err := readScriptFile(file)
				if err != nil {
					return err
				}

				request.Content = &content
			}

			if cmd.Flags().Changed("agent") {
				request.AgentGUID = &agentGUID
			}

			if cmd.Flags().Changed("timeout-ms") {
				request.TimeoutMS = &timeoutMS
			}

			script, err := client.Scripts().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update script: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully updated script '%s'\n", script.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "new script name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the new script source file")
	cmd.Flags().StringVar(&agentGUID, "agent", "", "pin the script to an agent GUID")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 0, "execution timeout in milliseconds")

	return cmd
}

func newScriptsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete SCRIPT_GUID",
		Short: "Delete a script",
		Long:  "Delete a Runforge script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete script '%s'? (y/N): ", args[0])

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

			err = client.Scripts().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete script: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted script '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newScriptsRunCommand() *cobra.Command {
	var (
		input     string
		agentGUID string
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "run SCRIPT_GUID",
		Short: "Run a script",
		Long:  "Trigger an on-demand execution of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request := &runforge.RunRequest{AgentGUID: agentGUID}
			if input != "" {
				request.Input = json.RawMessage(input)
			}

			execution, err := client.Scripts().Run(ctx, args[0], request)
			if err != nil {
				return fmt.Errorf("failed to run script: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Started execution %s\n", execution.GUID)

			if !wait {
				return nil
			}

			result, err := client.Executions().Result(ctx, execution, nil)
			if err != nil {
				return fmt.Errorf("failed to wait for result: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "%s\n", result)

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON input passed to the script")
	cmd.Flags().StringVar(&agentGUID, "agent", "", "run on a specific agent GUID")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the execution result")

	return cmd
}
