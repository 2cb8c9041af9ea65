package server

import (
	"context"
	"fmt"

	"github.com/mwantia/codingrules/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/codingrules/internal/config/server"
)

func NewAgentCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the coding rules API",
		Long: `Start the coding rules API.

The agent opens and migrates the rule store, imports the seed catalog
into an empty store and serves the HTTP API until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg, version).Serve(context.Background())
		},
	}

	return cmd
}
