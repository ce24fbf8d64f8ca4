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

// NewWebhooksCommand creates the webhooks command group.
func NewWebhooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"webhook"},
		Short:   "Manage webhooks",
		Long:    "List, create, update, and delete webhook triggers",
	}

	cmd.AddCommand(newWebhooksListCommand())
	cmd.AddCommand(newWebhooksGetCommand())
	cmd.AddCommand(newWebhooksCreateCommand())
	cmd.AddCommand(newWebhooksUpdateCommand())
	cmd.AddCommand(newWebhooksDeleteCommand())
	cmd.AddCommand(newWebhooksRotateSecretCommand())

	return cmd
}

func newWebhooksListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List webhooks",
		Long:  "List all webhooks the user has access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebhooksListCommand(cmd, allPages, perPage)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func runWebhooksListCommand(cmd *cobra.Command, allPages bool, perPage int) error {
	client, err := CreateClient(cmd.Flag("api").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := runforge.NewQueryParams()
	params.PerPage = perPage

	page, err := client.Webhooks().List(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}

	webhooks := page.Items()

	if allPages {
		webhooks = webhooks[:0]
		for webhook, err := range page.All(ctx) {
			if err != nil {
				return fmt.Errorf("failed to fetch webhooks: %w", err)
			}

			webhooks = append(webhooks, webhook)
		}
	}

	return outputWebhooks(webhooks, page, allPages)
}

func outputWebhooks(webhooks []runforge.Webhook, page *runforge.Page[runforge.Webhook, runforge.Webhook], allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(webhooks)
	case OutputFormatYAML:
		return StandardYAMLRenderer(webhooks)
	default:
		return renderWebhookTable(webhooks, page, allPages)
	}
}

func renderWebhookTable(webhooks []runforge.Webhook, page *runforge.Page[runforge.Webhook, runforge.Webhook], allPages bool) error {
	if len(webhooks) == 0 {
		_, _ = os.Stdout.WriteString("No webhooks found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Script", "Slug", "Status", "Created")

	for _, webhook := range webhooks {
		_ = table.Append(webhook.GUID, webhook.ScriptGUID, webhook.Slug,
			boolLabel(webhook.Enabled),
			webhook.CreatedAt.Format(dateFormat))
	}

	_ = table.Render()

	if !allPages && page.HasNextPage() {
		_, _ = fmt.Fprintf(os.Stdout, "\nShowing %d of %d webhooks. Use --all to fetch all pages.\n",
			len(webhooks), page.TotalCount())
	}

	return nil
}

func newWebhooksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WEBHOOK_GUID",
		Short: "Get webhook details",
		Long:  "Display detailed information about a specific webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			webhook, err := client.Webhooks().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get webhook: %w", err)
			}

			return outputWebhookDetails(webhook)
		},
	}
}

func outputWebhookDetails(webhook *runforge.Webhook) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(webhook)
	case OutputFormatYAML:
		return StandardYAMLRenderer(webhook)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("GUID", webhook.GUID)
		_ = table.Append("Script", webhook.ScriptGUID)
		_ = table.Append("Slug", webhook.Slug)
		_ = table.Append("Status", boolLabel(webhook.Enabled))
		_ = table.Append("Created", webhook.CreatedAt.Format(dateFormat))
		_ = table.Append("Updated", webhook.UpdatedAt.Format(dateFormat))

		_ = table.Render()

		return nil
	}
}

func newWebhooksCreateCommand() *cobra.Command {
	var (
		scriptGUID string
		slug       string
		disabled   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a webhook",
		Long:  "Create an HTTP trigger for a script",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptGUID == "" {
				return ErrScriptGUIDRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.WebhookCreateRequest{
				ScriptGUID: scriptGUID,
				Slug:       slug,
			}

			if disabled {
				enabled := false
				request.Enabled = &enabled
			}

			webhook, err := client.Webhooks().Create(context.Background(), request)
			if err != nil {
				return fmt.Errorf("failed to create webhook: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created webhook %s with slug '%s'\n", webhook.GUID, webhook.Slug)

			if webhook.Secret != "" {
				_, _ = fmt.Fprintf(os.Stdout, "Signing secret: %s\n", webhook.Secret)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&scriptGUID, "script", "", "script GUID to trigger (required)")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug for the webhook")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the webhook in a disabled state")

	return cmd
}

func newWebhooksUpdateCommand() *cobra.Command {
	var (
		slug    string
		enabled bool
	)

	cmd := &cobra.Command{
		Use:   "update WEBHOOK_GUID",
		Short: "Update a webhook",
		Long:  "Update an existing webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			request := &runforge.WebhookUpdateRequest{}
			if cmd.Flags().Changed("slug") {
				request.Slug = &slug
			}

			if cmd.Flags().Changed("enabled") {
				request.Enabled = &enabled
			}

			webhook, err := client.Webhooks().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update webhook: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully updated webhook %s\n", webhook.GUID)

			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "new URL slug")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "enable or disable the webhook")

	return cmd
}

func newWebhooksDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete WEBHOOK_GUID",
		Short: "Delete a webhook",
		Long:  "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete webhook '%s'? (y/N): ", args[0])

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

			err = client.Webhooks().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete webhook: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted webhook '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newWebhooksRotateSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-secret WEBHOOK_GUID",
		Short: "Rotate a webhook secret",
		Long:  "Generate a new signing secret for a webhook, invalidating the old one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			webhook, err := client.Webhooks().RotateSecret(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to rotate webhook secret: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "New signing secret: %s\n", webhook.Secret)

			return nil
		},
	}
}
