package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ashureev/adolai/internal/domain"
)

// JSONExporter writes the session array pretty-printed.
type JSONExporter struct{}

// Export writes doc.Sessions as an indented JSON array.
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	sessions := doc.Sessions
	if sessions == nil {
		sessions = []domain.ChatSession{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string { return "json" }

// ContentType returns the MIME type for this format.
func (e *JSONExporter) ContentType() string { return "application/json" }
