package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ashureev/adolai/internal/history"
	"github.com/ashureev/adolai/internal/store"
	"github.com/spf13/cobra"
)

type options struct {
	dbPath      string
	userID      string
	maxSessions int
	verbose     bool
}

// env is what every subcommand runs against.
type env struct {
	repo    *store.SQLiteStore
	history *history.Store
	userID  string
}

func (o *options) open(ctx context.Context, errOut io.Writer) (*env, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	repo, err := store.NewSQLite(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	hist := history.New(repo, history.Options{MaxSessions: o.maxSessions, Logger: logger})

	userID := o.userID
	if userID == "" {
		if userID, err = soleUser(ctx, hist); err != nil {
			_ = repo.Close()
			return nil, err
		}
		logger.Debug("Using the only stored user", "user_id", userID)
	}

	return &env{
		repo:    repo,
		history: hist,
		userID:  userID,
	}, nil
}

// soleUser picks the user when the database holds history for exactly one.
func soleUser(ctx context.Context, h *history.Store) (string, error) {
	ids := h.UserIDs(ctx)
	switch len(ids) {
	case 0:
		return "", errors.New("no stored history found; pass --user")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("history holds %d users (%s); pass --user", len(ids), strings.Join(ids, ", "))
	}
}

func (e *env) Close() error {
	return e.repo.Close()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "adolai-history",
		Short: "Inspect and export stored Adolai chat history",
		Long: `Inspect, search and export the chat history stored by the Adolai server.

Quick Start:
  adolai-history list --user user_123          # List sessions
  adolai-history search --query sleep          # Search transcripts
  adolai-history export --format md --out .    # Export as Markdown`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "./data/adolai.db", "Path to the history database")
	root.PersistentFlags().StringVar(&opts.userID, "user", "", "User id (defaults to the only user with stored history)")
	root.PersistentFlags().IntVar(&opts.maxSessions, "max-sessions", history.DefaultMaxSessions, "Maximum sessions kept per user")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newListCmd(opts),
		newSearchCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
		newClearCmd(opts),
		newFavoriteCmd(opts),
	)
	return root
}

// withEnv opens the database for the duration of fn.
func withEnv(cmd *cobra.Command, opts *options, fn func(*env) error) error {
	e, err := opts.open(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := e.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", closeErr)
		}
	}()
	return fn(e)
}
