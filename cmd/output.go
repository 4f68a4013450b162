package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// errReported is returned once a failure has already been written as a JSON envelope
var errReported = errors.New("error already reported")

// printer writes command results in the selected output format
type printer struct {
	out    io.Writer
	asJSON bool
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{
		out:    cmd.OutOrStdout(),
		asJSON: outputFormat == formatJSON,
	}
}

// render prints data with text, or the result envelope of (data, err) in JSON mode
func render[T any](p *printer, data T, err error, text func(w io.Writer, data T)) error {
	if p.asJSON {
		if encErr := p.writeJSON(elnk.NewResult(data, err)); encErr != nil {
			return encErr
		}
		if err != nil {
			return errReported
		}
		return nil
	}

	if err != nil {
		return err
	}
	text(p.out, data)
	return nil
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func printLink(w io.Writer, link elnk.Link) {
	short, ok := client.ConstructShortURL(link)
	if !ok {
		short = "(no alias)"
	}

	fmt.Fprintf(w, "• %s → %s\n", short, link.Target())
	fmt.Fprintf(w, "  ID: %s  Clicks: %d", link.ID, link.Clicks)
	if !link.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created: %s", link.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(w)
	if link.Title != "" {
		fmt.Fprintf(w, "  Title: %s\n", link.Title)
	}
}

func printLinks(w io.Writer, links []elnk.Link) {
	if len(links) == 0 {
		fmt.Fprintln(w, "No links found.")
		return
	}

	fmt.Fprintf(w, "\nFound %d links:\n", len(links))
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, link := range links {
		printLink(w, link)
	}
}

func printShortLink(w io.Writer, short *elnk.ShortLink) {
	if short.Existing {
		fmt.Fprintln(w, "✓ Existing short link found")
	} else {
		fmt.Fprintln(w, "✓ Short link created")
	}
	if short.ShortURL != "" {
		fmt.Fprintf(w, "  Short URL: %s\n", short.ShortURL)
	}
	fmt.Fprintf(w, "  Original:  %s\n", short.OriginalURL)
	fmt.Fprintf(w, "  ID:        %s\n", short.ID)
}

func printBulkSummary[T any](w io.Writer, result *elnk.BulkResult[T]) {
	fmt.Fprintf(w, "\nSummary: %d succeeded, %d failed, %d total\n", result.SuccessCount, result.ErrorCount, result.Total)
	for _, failure := range result.Failed {
		fmt.Fprintf(w, "  ✗ %s: %s\n", failure.Input, failure.Message)
	}
}
