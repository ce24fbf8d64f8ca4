package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/forgeclient"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration persisted to ~/.forge/config.yml.
type Config struct {
	API               string `json:"api,omitempty"       yaml:"api,omitempty"`
	Token             string `json:"token,omitempty"     yaml:"token,omitempty"`
	APIKey            string `json:"api_key,omitempty"   yaml:"api_key,omitempty"`
	Output            string `json:"output"              yaml:"output"`
	SkipSSLValidation bool   `json:"skip_ssl_validation" yaml:"skip_ssl_validation"`
}

// loadConfig builds the effective configuration from viper, which merges the
// config file, environment variables, and flags.
func loadConfig() *Config {
	return &Config{
		API:               viper.GetString("api"),
		Token:             viper.GetString("token"),
		APIKey:            viper.GetString("api_key"),
		Output:            viper.GetString("output"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
	}
}

// saveConfig persists the current viper state to the config file.
func saveConfig() error {
	return saveConfigStruct(loadConfig())
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".forge")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	return nil
}

// CreateClient builds a runforge client from the effective configuration. The
// apiFlag, when non-empty, overrides the configured endpoint.
func CreateClient(apiFlag string) (runforge.Client, error) {
	config := loadConfig()

	endpoint := config.API
	if apiFlag != "" {
		endpoint = apiFlag
	}

	if endpoint == "" {
		return nil, fmt.Errorf("%w, use 'forge login' or --api", ErrAPIEndpointRequired)
	}

	clientConfig := &runforge.Config{
		APIEndpoint:   endpoint,
		AccessToken:   config.Token,
		APIKey:        config.APIKey,
		SkipTLSVerify: config.SkipSSLValidation,
	}

	client, err := forgeclient.New(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage forge CLI configuration including endpoint and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(redactConfig(config))
			case OutputFormatYAML:
				return StandardYAMLRenderer(redactConfig(config))
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Setting", "Value")

				_ = table.Append("api", config.API)
				_ = table.Append("token", redactSecret(config.Token))
				_ = table.Append("api_key", redactSecret(config.APIKey))
				_ = table.Append("output", config.Output)
				_ = table.Append("skip_ssl_validation", fmt.Sprintf("%t", config.SkipSSLValidation))

				_ = table.Render()

				return nil
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], args[1])

			err := saveConfig()
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], "")

			err := saveConfig()
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Unset %s\n", args[0])

			return nil
		},
	}
}

func redactConfig(config *Config) *Config {
	redacted := *config
	redacted.Token = redactSecret(redacted.Token)
	redacted.APIKey = redactSecret(redacted.APIKey)

	return &redacted
}

func redactSecret(value string) string {
	if value == "" {
		return ""
	}

	return "***"
}
