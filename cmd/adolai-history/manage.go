package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all sessions and favorites of the user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			return withEnv(cmd, opts, func(e *env) error {
				e.history.ClearHistory(cmd.Context(), e.userID)
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared history for %s\n", e.userID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newFavoriteCmd(opts *options) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Toggle the favorite flag of a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			return withEnv(cmd, opts, func(e *env) error {
				if e.history.ToggleFavorite(cmd.Context(), e.userID, sessionID) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is now a favorite\n", sessionID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a favorite\n", sessionID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to toggle")
	return cmd
}
