package outfmt

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Formatter writes a command result in the mode selected by its context.
type Formatter struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	table  *tablewriter.Table
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{ctx: ctx, out: out, errOut: errOut}
}

// Output writes data in the structured mode of the context, applying the
// --query filter and --template. It writes nothing in text mode.
func (f *Formatter) Output(data any) error {
	mode := ModeFromContext(f.ctx)
	if mode == Text {
		return nil
	}

	filtered, err := ApplyQuery(data, GetQuery(f.ctx))
	if err != nil {
		return err
	}
	if tmpl := GetTemplate(f.ctx); tmpl != "" {
		return WriteTemplate(f.out, filtered, tmpl)
	}

	switch mode {
	case YAML:
		return WriteYAML(f.out, filtered)
	case JSONL:
		return WriteJSONL(f.out, filtered)
	default:
		return WriteJSONMaybeCompact(f.out, filtered, IsCompact(f.ctx))
	}
}

// StartTable begins a text table. It returns false when the context selects
// a structured mode, in which case rows must not be written.
func (f *Formatter) StartTable(headers ...string) bool {
	if IsStructured(f.ctx) {
		return false
	}
	f.table = tablewriter.NewWriter(f.out)
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	f.table.Header(cells...)
	return true
}

// Row appends a row to the table started by StartTable.
func (f *Formatter) Row(columns ...any) {
	if f.table == nil {
		return
	}
	_ = f.table.Append(columns...)
}

// EndTable renders the table.
func (f *Formatter) EndTable() error {
	if f.table == nil {
		return nil
	}
	err := f.table.Render()
	f.table = nil
	return err
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
