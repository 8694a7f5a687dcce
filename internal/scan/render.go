package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Write renders reports to w in the given format.
func Write(w io.Writer, format string, reports []Report) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		_, err := fmt.Fprintln(w, renderTable(reports))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(reports []Report) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Image", "Size", "Cutoff", "Lines", "Staves", "Staff rows"})

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
		if r.Threshold == nil {
			tw.AppendRow(table.Row{r.Path, "", "", "", "", "error: " + r.Error})
			continue
		}
		tw.AppendRow(table.Row{
			r.Path,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			strconv.FormatFloat(r.Threshold.Cutoff, 'f', 1, 64),
			len(r.Segments),
			len(r.Staves),
			staffNote(r),
		})
	}

	tw.AppendFooter(table.Row{fmt.Sprintf("%d images", len(reports)), "", "", "", totalStaves(reports), fmt.Sprintf("%d failed", failed)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

// staffNote lists the staff rows, followed by any error recorded after
// analysis succeeded.
func staffNote(r Report) string {
	rows := staffRows(r)
	if r.Error == "" {
		return rows
	}
	if rows == "" {
		return "error: " + r.Error
	}
	return rows + "; error: " + r.Error
}

func staffRows(r Report) string {
	parts := make([]string, 0, len(r.Staves))
	for _, st := range r.Staves {
		parts = append(parts, fmt.Sprintf("%d-%d", st.Top, st.Bottom))
	}
	return strings.Join(parts, ", ")
}

func totalStaves(reports []Report) int {
	n := 0
	for _, r := range reports {
		n += len(r.Staves)
	}
	return n
}
