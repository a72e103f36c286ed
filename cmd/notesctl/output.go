package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"notes-store/internal/model"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printNote(w io.Writer, format string, note model.Note) error {
	if format != outputText {
		return encode(w, format, note)
	}

	fmt.Fprintf(w, "ID:      %s\n", note.ID)
	fmt.Fprintf(w, "Title:   %s\n", note.Title)
	fmt.Fprintf(w, "Created: %s\n", note.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated: %s\n", note.UpdatedAt.Format(time.RFC3339))
	if note.Body != "" {
		fmt.Fprintf(w, "\n%s\n", note.Body)
	}
	return nil
}

func printSummaries(w io.Writer, format string, summaries []model.NoteSummary) error {
	if summaries == nil {
		summaries = []model.NoteSummary{}
	}
	if format != outputText {
		return encode(w, format, summaries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Title, s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
