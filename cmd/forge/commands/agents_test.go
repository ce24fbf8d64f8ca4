package commands_test

import (
	"testing"

	"github.com/runforge-io/runforge-client/cmd/forge/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewAgentsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAgentsCommand()
	assert.Equal(t, "agents", cmd.Use)
	assert.Equal(t, []string{"agent"}, cmd.Aliases)
	assert.Equal(t, "Manage agents", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 6)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "update")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "ping")
}

func TestAgentsListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAgentsCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List agents", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	// Check flags
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("per-page"))

	// Check flag defaults
	allFlag := cmd.Flags().Lookup("all")
	assert.Equal(t, "false", allFlag.DefValue)

	perPageFlag := cmd.Flags().Lookup("per-page")
	assert.Equal(t, "50", perPageFlag.DefValue)
}

func TestAgentsCreateCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAgentsCommand()
	cmd := findSubcommand(root, "create")
	assert.Equal(t, "create", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("name"))
	assert.NotNil(t, cmd.Flags().Lookup("tags"))
}

func TestAgentsDeleteCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAgentsCommand()
	cmd := findSubcommand(root, "delete")
	assert.Equal(t, "delete AGENT_GUID", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}
