package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Document accumulates a Markdown report.
type Document struct {
	b strings.Builder
}

// Heading writes a level-n ATX heading.
func (d *Document) Heading(level int, text string) {
	if level < 1 {
		level = 1
	}
	d.b.WriteString(strings.Repeat("#", level))
	d.b.WriteString(" ")
	d.b.WriteString(text)
	d.b.WriteString("\n\n")
}

// Paragraph writes a formatted paragraph followed by a blank line.
func (d *Document) Paragraph(format string, args ...any) {
	fmt.Fprintf(&d.b, format, args...)
	d.b.WriteString("\n\n")
}

// Block writes text as an indented code block.
func (d *Document) Block(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		d.b.WriteString("    ")
		d.b.WriteString(line)
		d.b.WriteString("\n")
	}
	d.b.WriteString("\n")
}

// Table writes a Markdown table.
func (d *Document) Table(header []string, rows [][]string) {
	tw := table.NewWriter()
	h := make(table.Row, len(header))
	for i, s := range header {
		h[i] = s
	}
	tw.AppendHeader(h)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, s := range r {
			row[i] = s
		}
		tw.AppendRow(row)
	}
	d.b.WriteString(tw.RenderMarkdown())
	d.b.WriteString("\n\n")
}

// Figure embeds an image by relative path.
func (d *Document) Figure(path, caption string) {
	fmt.Fprintf(&d.b, "![%s](%s)\n\n", caption, path)
}

// String returns the document so far.
func (d *Document) String() string { return d.b.String() }

// Bytes returns the document so far.
func (d *Document) Bytes() []byte { return []byte(d.b.String()) }

// Code wraps s as inline code.
func Code(s string) string { return "``" + s + "``" }
