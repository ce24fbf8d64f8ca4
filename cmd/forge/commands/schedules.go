package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSchedulesCommand creates the schedules command group.
func NewSchedulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage schedules",
		Long:    "List, create, update, and delete recurring script schedules",
	}

	cmd.AddCommand(newSchedulesListCommand())
	cmd.AddCommand(newSchedulesGetCommand())
	cmd.AddCommand(newSchedulesCreateCommand())
	cmd.AddCommand(newSchedulesUpdateCommand())
	cmd.AddCommand(newSchedulesDeleteCommand())
	cmd.AddCommand(newSchedulesEnableCommand())
	cmd.AddCommand(newSchedulesDisableCommand())

	return cmd
}

func newSchedulesListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		Long:  "List all schedules the user has access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedulesListCommand(cmd, allPages, perPage)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func runSchedulesListCommand(cmd *cobra.Command, allPages bool, perPage int) error {
	client, err := CreateClient(cmd.Flag("api").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := runforge.NewQueryParams()
	params.PerPage = perPage

	page, err := client.Schedules().List(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	schedules := page.Items()

	if allPages {
		schedules = schedules[:0]
		for schedule, err := range page.All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to fetch schedules: %w", err)
			}

			schedules = append(schedules, schedule)
		}
	}

	return outputSchedules(schedules, page, allPages)
}

func outputSchedules(schedules []runforge.Schedule, page *runforge.Page[runforge.Schedule, runforge.Schedule], allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(schedules)
	case OutputFormatYAML:
		return StandardYAMLRenderer(schedules)
	default:
		return renderScheduleTable(schedules, page, allPages)
	}
}

func renderScheduleTable(schedules []runforge.Schedule, page *runforge.Page[runforge.Schedule, runforge.Schedule], allPages bool) error {
	if len(schedules) == 0 {
		_, _ = os.Stdout.WriteString("No schedules found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Script", "Cron", "Status", "Next Run", "Last Run")

	for _, schedule := range schedules {
		_ = table.Append(schedule.GUID, schedule.ScriptGUID, schedule.Cron,
			boolLabel(schedule.Enabled),
			formatDate(schedule.NextRunAt),
			formatDate(schedule.LastRunAt))
	}

	_ = table.Render()

	if !allPages && page.HasNextPage() {
		_, _ = fmt.Fprintf(os.Stdout, "\nShowing %d of %d schedules. Use --all to fetch all pages.\n",
			len(schedules), page.TotalCount())
	}

	return nil
}

func newSchedulesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SCHEDULE_GUID",
		Short: "Get schedule details",
		Long:  "Display detailed information about a specific schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			schedule, err := client.Schedules().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get schedule: %w", err)
			}

			return outputScheduleDetails(schedule)
		},
	}
}

func outputScheduleDetails(schedule *runforge.Schedule) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(schedule)
	case OutputFormatYAML:
		return StandardYAMLRenderer(schedule)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("GUID", schedule.GUID)
		_ = table.Append("Script", schedule.ScriptGUID)
		_ = table.Append("Cron", schedule.Cron)
		_ = table.Append("Status", boolLabel(schedule.Enabled))
		_ = table.Append("Next Run", formatDate(schedule.NextRunAt))
		_ = table.Append("Last Run", formatDate(schedule.LastRunAt))
		_ = table.Append("Created", schedule.CreatedAt.Format(dateFormat))

		_ = table.Render()

		return nil
	}
}

func newSchedulesCreateCommand() *cobra.Command {
	var (
		scriptGUID string
		cron       string
		disabled   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Long:  "Create a recurring trigger for a script",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptGUID == "" {
				return ErrScriptGUIDRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.ScheduleCreateRequest{
				ScriptGUID: scriptGUID,
				Cron:       cron,
			}

			if disabled {
				enabled := false
				request.Enabled = &enabled
			}

			schedule, err := client.Schedules().Create(context.Background(), request)
			if err != nil {
				return fmt.Errorf("failed to create schedule: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created schedule %s\n", schedule.GUID)

			return nil
		},
	}

	cmd.Flags().StringVar(&scriptGUID, "script", "", "script GUID to schedule (required)")
	cmd.Flags().StringVar(&cron, "cron", "", "cron expression")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the schedule in a disabled state")

	return cmd
}

func newSchedulesUpdateCommand() *cobra.Command {
	var cron string

	cmd := &cobra.Command{
		Use:   "update SCHEDULE_GUID",
		Short: "Update a schedule",
		Long:  "Update an existing schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.ScheduleUpdateRequest{}
			if cmd.Flags().Changed("cron") {
				request.Cron = &cron
			}

			schedule, err := client.Schedules().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update schedule: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully updated schedule %s\n", schedule.GUID)

			return nil
		},
	}

	cmd.Flags().StringVar(&cron, "cron", "", "new cron expression")

	return cmd
}

func newSchedulesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete SCHEDULE_GUID",
		Short: "Delete a schedule",
		Long:  "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete schedule '%s'? (y/N): ", args[0])

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

			err = client.Schedules().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete schedule: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted schedule '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newSchedulesEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable SCHEDULE_GUID",
		Short: "Enable a schedule",
		Long:  "Enable a disabled schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			schedule, err := client.Schedules().Enable(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to enable schedule: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Schedule %s is %s\n", schedule.GUID, boolLabel(schedule.Enabled))

			return nil
		},
	}
}

func newSchedulesDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable SCHEDULE_GUID",
		Short: "Disable a schedule",
		Long:  "Disable an enabled schedule without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			schedule, err := client.Schedules().Disable(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to disable schedule: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Schedule %s is %s\n", schedule.GUID, boolLabel(schedule.Enabled))

			return nil
		},
	}
}
