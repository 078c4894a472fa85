package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ashureev/adolai/internal/domain"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "15:04:05"
)

var (
	sectionRule = strings.Repeat("=", 50)
	sessionRule = strings.Repeat("-", 30)
)

// TextExporter renders a human-readable transcript.
type TextExporter struct{}

// Export writes a header followed by one block per session.
func (e *TextExporter) Export(doc *Document, w io.Writer) error {
	bw := bufio.NewWriter(w)
	loc := doc.loc()

	fmt.Fprintf(bw, "Chat History Export for User: %s\n", doc.UserID)
	fmt.Fprintf(bw, "Exported on: %s\n\n", doc.ExportedAt.In(loc).Format(dateTimeLayout))
	fmt.Fprintf(bw, "%s\n\n", sectionRule)

	for i := range doc.Sessions {
		s := &doc.Sessions[i]
		fmt.Fprintf(bw, "Session %d: %s\n", i+1, s.SessionID)
		fmt.Fprintf(bw, "Created: %s\n", formatMillis(s.CreatedAt, loc))
		fmt.Fprintf(bw, "Topic: %s\n", orDefault(s.Topic, "General"))
		fmt.Fprintf(bw, "Summary: %s\n", orDefault(s.Summary, "No summary"))
		fmt.Fprintf(bw, "%s\n", sessionRule)

		for _, m := range s.Messages {
			fmt.Fprintf(bw, "[%s] %s: %s\n", m.Timestamp.In(loc).Format(timeLayout), m.Sender(), m.Text)
		}

		fmt.Fprintf(bw, "\n%s\n\n", sectionRule)
	}

	return bw.Flush()
}

func formatMillis(ms int64, loc *time.Location) string {
	t := domain.MillisToTime(ms)
	if t.IsZero() {
		return "Unknown"
	}
	return t.In(loc).Format(dateTimeLayout)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Extension returns the file extension for this format.
func (e *TextExporter) Extension() string { return "txt" }

// ContentType returns the MIME type for this format.
func (e *TextExporter) ContentType() string { return "text/plain; charset=utf-8" }
