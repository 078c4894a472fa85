package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/history"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

func newListCmd(opts *options) *cobra.Command {
	var favoritesOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				ctx := cmd.Context()
				var sessions []domain.ChatSession
				if favoritesOnly {
					sessions = e.history.FavoriteSessions(ctx, e.userID)
				} else {
					var status history.LoadStatus
					sessions, status = e.history.LoadSessions(ctx, e.userID)
					if status == history.LoadCorrupt {
						fmt.Fprintln(cmd.ErrOrStderr(), "Warning: stored history was unreadable and is shown as empty")
					}
				}
				favs := make(map[string]bool)
				for _, id := range e.history.FavoriteIDs(ctx, e.userID) {
					favs[id] = true
				}
				renderSessions(cmd.OutOrStdout(), sessions, favs)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only list favorite sessions")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search summaries, topics and message text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("--query is required")
			}
			return withEnv(cmd, opts, func(e *env) error {
				renderSessions(cmd.OutOrStdout(), e.history.SearchSessions(cmd.Context(), e.userID, query), nil)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive search text")
	return cmd
}

func renderSessions(w io.Writer, sessions []domain.ChatSession, favorites map[string]bool) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No sessions found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Sessions (%s)", countStyle.Render(fmt.Sprint(len(sessions))))))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tMESSAGES\tTOPIC\tSUMMARY")
	for i := range sessions {
		s := &sessions[i]
		id := idStyle.Render(s.SessionID)
		if favorites[s.SessionID] {
			id = favoriteStyle.Render("★ ") + id
		}
		topic := s.Topic
		if topic == "" {
			topic = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			id,
			domain.MillisToTime(s.LastModified).Format(time.DateTime),
			len(s.Messages),
			topic,
			s.Summary,
		)
	}
	_ = tw.Flush()
}
