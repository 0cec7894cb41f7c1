// Package cli implements coachctl, the operator command line for the
// interview coach stores.
package cli

import (
	"context"
	"fmt"

	"interview-coach/internal/config"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"
	"interview-coach/internal/service"
	"interview-coach/internal/store"

	"github.com/spf13/cobra"
)

// Env is what the subcommands operate on.
type Env struct {
	Admin     service.AdminService
	Histories domain.HistoryRepository
	Close     func()
}

// Opener connects the configured stores. migrate runs the SQL migrations
// first.
type Opener func(ctx context.Context, migrate bool) (*Env, error)

// OpenFromConfig loads the configuration the API server uses and opens its
// stores.
func OpenFromConfig(_ context.Context, migrate bool) (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if migrate && cfg.Store.Backend != "sql" {
		return nil, fmt.Errorf("migrate needs store.backend sql, got %q", cfg.Store.Backend)
	}
	stores, err := store.Open(cfg, migrate)
	if err != nil {
		return nil, err
	}
	return &Env{
		Admin:     service.NewAdminService(stores.Users, stores.Histories),
		Histories: stores.Histories,
		Close: func() {
			stores.Close()
			_ = logger.Sync()
		},
	}, nil
}

// NewRootCmd builds the command tree around open.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "coachctl",
		Short: "Operate the interview coach stores",
		Long: `coachctl manages the users and interview histories of an interview coach
deployment. It reads the same config.yaml and environment as the API server.

Examples:
  # Create or upgrade the SQL schema
  coachctl migrate

  # Show every registered user with their latest score
  coachctl users list

  # Show one user's past interviews
  coachctl history alice@example.com
`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCmd(open),
		newUsersCmd(open),
		newHistoryCmd(open),
	)
	return root
}

// Execute runs coachctl against the configured stores.
func Execute(ctx context.Context) error {
	return NewRootCmd(OpenFromConfig).ExecuteContext(ctx)
}

// withEnv opens the stores for the duration of fn.
func withEnv(cmd *cobra.Command, open Opener, migrate bool, fn func(*Env) error) error {
	env, err := open(cmd.Context(), migrate)
	if err != nil {
		return err
	}
	if env.Close != nil {
		defer env.Close()
	}
	return fn(env)
}
