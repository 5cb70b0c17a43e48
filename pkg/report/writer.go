package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// Writer streams a report. Table and CSV rows are written as they arrive;
// Markdown is buffered and rendered as one table by Flush.
type Writer struct {
	out         io.Writer
	format      Format
	wroteHeader bool
	rows        [][]string
}

// NewWriter creates a Writer emitting format f to out
func NewWriter(out io.Writer, f Format) *Writer {
	return &Writer{out: out, format: f}
}

// Write renders one package, preceded by the header on first use
func (w *Writer) Write(rec dpkg.Record, res license.Result) error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	if w.format == FormatMarkdown {
		fields := Fields(rec, res)
		for i := range fields {
			fields[i] = escapeCell(fields[i])
		}
		w.rows = append(w.rows, fields)
		return nil
	}

	_, err := fmt.Fprintln(w.out, Row(rec, res, w.format))
	return err
}

// Flush completes the report. A report without rows still gets its header.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	if w.format != FormatMarkdown {
		return nil
	}

	md := markdown.NewMarkdown(w.out)
	md.H1("Installed package licenses")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   w.rows,
	})
	w.rows = nil
	return md.Build()
}

func (w *Writer) writeHeader() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true

	for _, line := range Header(w.format) {
		if _, err := fmt.Fprintln(w.out, line); err != nil {
			return err
		}
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
