package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/runforge-io/runforge-client/pkg/forgeclient"
	"github.com/runforge-io/runforge-client/pkg/runforge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		apiKey      string
		token       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Runforge",
		Long:  "Authenticate with a Runforge API endpoint and persist the credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get API endpoint
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			skipSSL := viper.GetBool("skip_ssl_validation")

			config := &runforge.Config{
				APIEndpoint:   apiEndpoint,
				SkipTLSVerify: skipSSL,
			}

			// Determine authentication method
			switch {
			case token != "":
				config.AccessToken = token
			case apiKey != "":
				config.APIKey = apiKey
			default:
				fmt.Print("API key: ")

				byteKey, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				apiKey = string(byteKey)
				config.APIKey = apiKey

				fmt.Println()
			}

			// Create client
			client, err := forgeclient.New(context.Background(), config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Test connection by getting info
			info, err := client.GetInfo(context.Background())
			if err != nil {
				return fmt.Errorf("failed to connect to API: %w", err)
			}

			// Persist credentials
			viper.Set("api", config.APIEndpoint)
			viper.Set("token", token)
			viper.Set("api_key", apiKey)
			viper.Set("skip_ssl_validation", skipSSL)

			err = saveConfig()
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", config.APIEndpoint)
			fmt.Printf("API version: %d\n", info.Version)

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "API endpoint URL")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "API key for authentication")
	cmd.Flags().StringVarP(&token, "token", "t", "", "access token for authentication")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Runforge",
		Long:  "Clear authentication credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("token", "")
			viper.Set("api_key", "")

			err := saveConfig()
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
