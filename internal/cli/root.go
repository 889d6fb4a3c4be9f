package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ashasphere/internal/bootstrap"
	"ashasphere/internal/usecase"
)

// Backend is what the commands read and edit.
type Backend struct {
	History *usecase.History
	Profile *usecase.Profile
}

// NewRootCommand creates the top-level command hosting every subcommand.
func NewRootCommand(ctx context.Context, backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ashactl",
		Short:         "Review your AshaSphere journal, moods and insights from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newHistoryCommand(ctx, backend),
		newMoodsCommand(ctx, backend),
		newInsightsCommand(ctx, backend),
		newSettingsCommand(ctx, backend),
		newGoalCommand(ctx, backend),
	)
	return cmd
}

// ExecuteCommand opens the configured store and runs the root command.
func ExecuteCommand(ctx context.Context) error {
	storage, err := bootstrap.OpenStorage(os.Stderr)
	if err != nil {
		return err
	}
	defer storage.Close()

	return NewRootCommand(ctx, Backend{History: storage.History, Profile: storage.Profile}).ExecuteContext(ctx)
}

// Main keeps the wiring for cmd/ashactl in one place.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
