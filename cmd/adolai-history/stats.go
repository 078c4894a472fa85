package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(20)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				stats := e.history.StorageStats(cmd.Context(), e.userID)

				oldest, newest := "-", "-"
				if stats.OldestSession != nil {
					oldest = stats.OldestSession.Format(time.DateTime)
				}
				if stats.NewestSession != nil {
					newest = stats.NewestSession.Format(time.DateTime)
				}

				body := lipgloss.JoinVertical(lipgloss.Left,
					headerStyle.Render("History for "+e.userID),
					row("Sessions", countStyle.Render(fmt.Sprint(stats.TotalSessions))),
					row("Messages", countStyle.Render(fmt.Sprint(stats.TotalMessages))),
					row("Favorites", countStyle.Render(fmt.Sprint(stats.FavoriteSessions))),
					row("Oldest", oldest),
					row("Newest", newest),
				)
				fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(body))
				return nil
			})
		},
	}
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
