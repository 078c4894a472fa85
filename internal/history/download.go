package history

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ashureev/adolai/internal/history/export"
)

// Export is a rendered history file ready to be downloaded.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportSessions renders the user's sessions in format ("json", "txt",
// "yaml" or "md").
func (s *Store) ExportSessions(ctx context.Context, userID, format string) (*Export, error) {
	exp, err := export.NewExporter(format)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &export.Document{
		UserID:     userID,
		ExportedAt: now,
		Location:   s.loc,
		Sessions:   s.AllSessions(ctx, userID),
	}

	var buf bytes.Buffer
	if err := exp.Export(doc, &buf); err != nil {
		return nil, fmt.Errorf("export %s history: %w", exp.Extension(), err)
	}

	return &Export{
		FileName:    export.FileName(userID, now, exp.Extension()),
		ContentType: exp.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// DownloadExport writes the export into dir under its download name and
// returns the file path.
func (s *Store) DownloadExport(ctx context.Context, userID, format, dir string) (string, error) {
	out, err := s.ExportSessions(ctx, userID, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, out.FileName)
	if err := os.WriteFile(path, out.Data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.log.Info("Chat history exported", "user_id", userID, "path", path, "bytes", len(out.Data))
	return path, nil
}
