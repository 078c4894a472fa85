package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter renders the history as Markdown, one section per session.
type MarkdownExporter struct{}

// Export writes the history to Markdown.
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	bw := bufio.NewWriter(w)
	loc := doc.loc()

	fmt.Fprintf(bw, "# Chat History: %s\n\n", doc.UserID)
	fmt.Fprintf(bw, "_Exported on %s_\n\n", doc.ExportedAt.In(loc).Format(dateTimeLayout))

	for i := range doc.Sessions {
		s := &doc.Sessions[i]
		fmt.Fprintf(bw, "## Session %d: %s\n\n", i+1, orDefault(s.Summary, s.SessionID))
		fmt.Fprintf(bw, "- **ID:** `%s`\n", s.SessionID)
		fmt.Fprintf(bw, "- **Created:** %s\n", formatMillis(s.CreatedAt, loc))
		fmt.Fprintf(bw, "- **Topic:** %s\n\n", orDefault(s.Topic, "General"))

		for _, m := range s.Messages {
			fmt.Fprintf(bw, "**%s** (%s)\n\n", m.Sender(), m.Timestamp.In(loc).Format(timeLayout))
			for _, line := range strings.Split(m.Text, "\n") {
				fmt.Fprintf(bw, "> %s\n", line)
			}
			bw.WriteString("\n")
		}
		bw.WriteString("---\n\n")
	}

	return bw.Flush()
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string { return "md" }

// ContentType returns the MIME type for this format.
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
