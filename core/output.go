package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// timeLayout is how timestamps are shown to the user.
const timeLayout = "2006-01-02 15:04:05"

// Printer handles all display output for the CLI.
type Printer struct {
	JSON    bool
	Verbose bool
	Writer  io.Writer
}

// NewPrinter creates a default Printer writing to stdout.
func NewPrinter(jsonMode, verbose bool) *Printer {
	return &Printer{JSON: jsonMode, Verbose: verbose, Writer: os.Stdout}
}

// PrintMetadata renders a Metadata struct to the configured output.
func (p *Printer) PrintMetadata(m *Metadata) {
	if p.JSON {
		p.printJSON(m)
		return
	}
	p.printText(m)
}

func (p *Printer) printText(m *Metadata) {
	fmt.Fprintf(p.Writer, "File  : %s\n", m.FilePath)
	fmt.Fprintf(p.Writer, "Format: %s\n", m.Format)
	if len(m.Fields) == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintf(p.Writer, "Brief : %s\n", m.Summary())
	fmt.Fprintln(p.Writer)

	for _, f := range m.Fields {
		edit := ""
		if f.Editable {
			edit = " [shifted]"
		}
		fmt.Fprintf(p.Writer, "  %-30s %s%s\n", f.Key+":", f.Value, edit)
		if p.Verbose && f.Raw != "" {
			fmt.Fprintf(p.Writer, "  %-30s %s\n", "", f.Raw)
		}
	}
}

func (p *Printer) printJSON(m *Metadata) {
	type jsonField struct {
		Key      string `json:"key"`
		Value    string `json:"value"`
		Category string `json:"category"`
		Editable bool   `json:"editable"`
	}
	type jsonOutput struct {
		FilePath string      `json:"file"`
		Format   string      `json:"format"`
		Fields   []jsonField `json:"fields"`
	}

	out := jsonOutput{
		FilePath: m.FilePath,
		Format:   m.Format,
	}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, jsonField{
			Key:      f.Key,
			Value:    f.Value,
			Category: f.Category,
			Editable: f.Editable,
		})
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(p.Writer, string(b))
}

// PrintPlan renders the renames of a batch, one per line, or as a JSON array.
func (p *Printer) PrintPlan(plan []Rename) {
	if p.JSON {
		type jsonRename struct {
			From    string `json:"from"`
			To      string `json:"to"`
			OldTime string `json:"old_time"`
			NewTime string `json:"new_time"`
		}
		out := make([]jsonRename, 0, len(plan))
		for _, r := range plan {
			out = append(out, jsonRename{
				From:    r.From,
				To:      r.To,
				OldTime: r.OldTime.Format(timeLayout),
				NewTime: r.NewTime.Format(timeLayout),
			})
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(p.Writer, string(b))
		return
	}

	width := 0
	for _, r := range plan {
		if len(r.From) > width {
			width = len(r.From)
		}
	}
	for _, r := range plan {
		fmt.Fprintf(p.Writer, "  %-*s  %s  →  %s  %s\n",
			width, r.From, r.OldTime.Format(timeLayout), r.NewTime.Format(timeLayout), r.To)
	}
}

// PrintSuccess prints a success message.
func (p *Printer) PrintSuccess(msg string) {
	if !p.JSON {
		fmt.Fprintln(p.Writer, "✓ "+msg)
	}
}

// PrintInfo prints an info line (suppressed in JSON mode).
func (p *Printer) PrintInfo(msg string) {
	if !p.JSON {
		fmt.Fprintln(p.Writer, msg)
	}
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ Error: "+msg)
}
