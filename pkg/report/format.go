// Package report renders resolved packages as a fixed-width table, CSV or
// Markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// Format selects the output rendering
type Format int

const (
	FormatTable Format = iota
	FormatCSV
	FormatMarkdown
)

var formatNames = map[Format]string{
	FormatTable:    "table",
	FormatCSV:      "csv",
	FormatMarkdown: "markdown",
}

// String returns the configuration name of the format
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a configuration value into a Format
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	if strings.EqualFold(s, "md") {
		return FormatMarkdown, nil
	}
	return 0, fmt.Errorf("unknown format %q (want table, csv or markdown)", s)
}

// Column widths of the table format. The license column is never truncated.
const (
	StatusWidth      = 2
	NameWidth        = 30
	VersionWidth     = 30
	ArchWidth        = 6
	DescriptionWidth = 60
)

var headers = []string{"St", "Name", "Version", "Arch", "Description", "License"}

var widths = []int{StatusWidth, NameWidth, VersionWidth, ArchWidth, DescriptionWidth}

// Fields returns the six report columns of one package in output order
func Fields(rec dpkg.Record, res license.Result) []string {
	return []string{rec.Status, rec.Name, rec.Version, rec.Arch, rec.Description, res.License}
}

// Truncate cuts s to at most n characters. It is not word aware.
func Truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// tableLine lays fields out in fixed-width, left-aligned columns
func tableLine(fields []string) string {
	var b strings.Builder
	for i, w := range widths {
		fmt.Fprintf(&b, "%-*s ", w, Truncate(fields[i], w))
	}
	b.WriteString(fields[len(widths)])
	return b.String()
}

// csvLine quotes every field and doubles embedded quotes
func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// Header returns the lines printed before any data row
func Header(f Format) []string {
	switch f {
	case FormatCSV:
		return []string{csvLine(headers)}
	case FormatTable:
		sep := make([]string, len(headers))
		for i := range widths {
			sep[i] = strings.Repeat("-", widths[i])
		}
		sep[len(widths)] = strings.Repeat("-", len(headers[len(widths)]))
		return []string{tableLine(headers), tableLine(sep)}
	default:
		return nil
	}
}

// Row renders one package. Markdown rows are rendered by Writer.Flush and
// fall back to the table layout here.
func Row(rec dpkg.Record, res license.Result, f Format) string {
	fields := Fields(rec, res)
	if f == FormatCSV {
		return csvLine(fields)
	}
	return tableLine(fields)
}
