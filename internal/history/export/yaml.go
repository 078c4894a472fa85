package export

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the history as a YAML document.
type YAMLExporter struct{}

type yamlDocument struct {
	UserID     string `yaml:"user_id"`
	ExportedAt string `yaml:"exported_at"`
	Sessions   any    `yaml:"sessions"`
}

// Export writes the history to YAML.
func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(yamlDocument{
		UserID:     doc.UserID,
		ExportedAt: doc.ExportedAt.In(doc.loc()).Format(time.RFC3339),
		Sessions:   doc.Sessions,
	}); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string { return "yaml" }

// ContentType returns the MIME type for this format.
func (e *YAMLExporter) ContentType() string { return "application/yaml" }
