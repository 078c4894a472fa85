package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/adolai/internal/domain"
	"gopkg.in/yaml.v3"
)

func testDocument() *Document {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &Document{
		UserID:     "user_1",
		ExportedAt: ts,
		Location:   time.UTC,
		Sessions: []domain.ChatSession{{
			SessionID:    "session_1",
			Topic:        "Nutrition",
			Summary:      "Is breakfast important?",
			CreatedAt:    ts.UnixMilli(),
			LastModified: ts.UnixMilli(),
			Messages: []domain.Message{
				{ID: "1", Text: "Is breakfast important?", Timestamp: ts},
				{ID: "2", Text: "Yes.\nIt fuels your morning.", IsBot: true, Timestamp: ts.Add(time.Second)},
			},
		}},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"", "json"},
		{"json", "json"},
		{"txt", "txt"},
		{"text", "txt"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
		{"md", "md"},
		{"markdown", "md"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q): %v", tt.format, err)
			}
			if exp.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", exp.Extension(), tt.ext)
			}
		})
	}

	if _, err := NewExporter("pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewExporter(pdf) err = %v", err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("user_1", time.UnixMilli(1700000000123), "json")
	if got != "adolai_chat_history_user_1_1700000000123.json" {
		t.Errorf("FileName = %q", got)
	}
}

func TestJSONExporter_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(&Document{UserID: "user_1"}, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestJSONExporter_Indented(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(testDocument(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "[\n  {\n    \"sessionId\": \"session_1\"") {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}
}

func TestTextExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextExporter{}).Export(testDocument(), &buf); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Chat History Export for User: user_1",
		"Exported on: 2024-03-01 09:30:00",
		"",
		strings.Repeat("=", 50),
		"",
		"Session 1: session_1",
		"Created: 2024-03-01 09:30:00",
		"Topic: Nutrition",
		"Summary: Is breakfast important?",
		strings.Repeat("-", 30),
		"[09:30:00] User: Is breakfast important?",
		"[09:30:01] Bot: Yes.\nIt fuels your morning.",
		"",
		strings.Repeat("=", 50),
		"",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("text export mismatch:\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTextExporter_Defaults(t *testing.T) {
	doc := &Document{UserID: "user_1", Location: time.UTC, Sessions: []domain.ChatSession{{SessionID: "s"}}}
	var buf bytes.Buffer
	if err := (&TextExporter{}).Export(doc, &buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Created: Unknown", "Topic: General", "Summary: No summary"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in:\n%s", want, buf.String())
		}
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(testDocument(), &buf); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		UserID   string `yaml:"user_id"`
		Sessions []struct {
			SessionID string `yaml:"session_id"`
			Topic     string `yaml:"topic"`
		} `yaml:"sessions"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, buf.String())
	}
	if decoded.UserID != "user_1" || len(decoded.Sessions) != 1 || decoded.Sessions[0].Topic != "Nutrition" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(testDocument(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Chat History: user_1",
		"## Session 1: Is breakfast important?",
		"**Bot** (09:30:01)",
		"> Yes.\n> It fuels your morning.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}
