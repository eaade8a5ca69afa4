// Package render draws simulation state for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/garethgeorge/memsim/internal/sim"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	colorStripe   = lipgloss.Color("#F0F0F0")
	colorOccupied = lipgloss.Color("#90EE90")
	colorFree     = lipgloss.Color("#FF6347")
	colorHeader   = lipgloss.Color("#6495ED")
	colorText     = lipgloss.Color("#000000")
)

type Options struct {
	NoColor bool
}

// Renderer writes tables, outcomes and metrics to one writer. Color support is
// detected from that writer.
type Renderer struct {
	w       io.Writer
	lg      *lipgloss.Renderer
	noColor bool
	printer *message.Printer
}

func New(w io.Writer, opts Options) *Renderer {
	return &Renderer{
		w:       w,
		lg:      lipgloss.NewRenderer(w),
		noColor: opts.NoColor,
		printer: message.NewPrinter(language.English),
	}
}

func (r *Renderer) cellStyle(row int, c sim.Cell, width int) lipgloss.Style {
	style := r.lg.NewStyle().Width(width).Padding(0, 1).Align(lipgloss.Right)
	if r.noColor {
		return style
	}
	if row%2 == 0 {
		style = style.Background(colorStripe).Foreground(colorText)
	}
	switch c.Highlight {
	case sim.HighlightOccupied:
		style = style.Background(colorOccupied).Foreground(colorText)
	case sim.HighlightFree:
		style = style.Background(colorFree).Foreground(colorText)
	case sim.HighlightRejected:
		style = style.Foreground(colorFree)
	case sim.HighlightExhausted:
		style = style.Background(colorFree).Foreground(colorText).Bold(true)
	}
	return style
}

// Table renders rows under columns, one line per row.
func (r *Renderer) Table(columns []string, rows []sim.Row) error {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) && lipgloss.Width(c.Text) > widths[i] {
				widths[i] = lipgloss.Width(c.Text)
			}
		}
	}

	var b strings.Builder
	header := r.lg.NewStyle().Bold(true).Padding(0, 1)
	if !r.noColor {
		header = header.Foreground(colorHeader)
	}
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = header.Width(widths[i] + 2).Render(col)
	}
	b.WriteString(strings.TrimRight(strings.Join(cells, "│"), " "))
	b.WriteByte('\n')

	rules := make([]string, len(columns))
	for i := range columns {
		rules[i] = strings.Repeat("─", widths[i]+2)
	}
	b.WriteString(strings.Join(rules, "┼"))
	b.WriteByte('\n')

	for ri, row := range rows {
		cells = cells[:0]
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			cells = append(cells, r.cellStyle(ri, c, widths[i]+2).Render(c.Text))
		}
		b.WriteString(strings.Join(cells, "│"))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Outcome renders the title and message of one applied action.
func (r *Renderer) Outcome(out sim.Outcome) error {
	if out.Message == "" {
		return nil
	}
	title := r.lg.NewStyle().Bold(true)
	if !r.noColor {
		if out.Failed() {
			title = title.Foreground(colorFree)
		} else {
			title = title.Foreground(colorOccupied)
		}
	}
	_, err := fmt.Fprintf(r.w, "%s %s\n", title.Render("["+out.Title+"]"), out.Message)
	return err
}

// Metrics renders name/value pairs with grouped thousands.
func (r *Renderer) Metrics(metrics []sim.Metric) error {
	width := 0
	for _, m := range metrics {
		width = max(width, len(m.Name)+1)
	}
	var b strings.Builder
	for _, m := range metrics {
		value := r.printer.Sprintf("%d", m.Value)
		if m.Unit != "" {
			value += " " + m.Unit
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, m.Name+":", value)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}
