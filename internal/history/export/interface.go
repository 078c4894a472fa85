// Package export renders a user's chat history in downloadable formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ashureev/adolai/internal/domain"
)

// ErrUnsupportedFormat is returned for formats without an exporter.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Document is everything an exporter renders.
type Document struct {
	UserID     string
	ExportedAt time.Time
	Location   *time.Location
	Sessions   []domain.ChatSession
}

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates an exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json", "":
		return &JSONExporter{}, nil
	case "txt", "text":
		return &TextExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: json, txt, yaml, md)", ErrUnsupportedFormat, format)
	}
}

// FileName returns the download name for an export made at t.
func FileName(userID string, t time.Time, ext string) string {
	return fmt.Sprintf("adolai_chat_history_%s_%d.%s", userID, t.UnixMilli(), ext)
}

func (d *Document) loc() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}
