package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(ctx context.Context, backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your name and daily goal.",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings and greeting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := backend.Profile.Settings(ctx)
			if err != nil {
				return err
			}
			greeting, err := backend.Profile.Greeting(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), greeting)
			fmt.Fprintln(cmd.OutOrStdout(), formatSettings(settings))
			return nil
		},
	}

	name := &cobra.Command{
		Use:   "name <name>",
		Short: "Set the name Asha greets you by.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := backend.Profile.SetUserName(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSettings(settings))
			return nil
		},
	}

	goal := &cobra.Command{
		Use:   "goal <text>",
		Short: "Set a new daily goal.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := backend.Profile.SetDailyGoal(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSettings(settings))
			return nil
		},
	}

	cmd.AddCommand(show, name, goal)
	return cmd
}

func newGoalCommand(ctx context.Context, backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Track the daily goal.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Mark today's goal as done.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := backend.Profile.CompleteGoal(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal completed: %s\n", settings.DailyGoal)
			return nil
		},
	})
	return cmd
}
