package ingest

import (
	"bufio"
	"os"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// FieldRange names one fixed-width field and its half-open byte range within
// a line.
type FieldRange struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// Layout is a versioned fixed-width record layout. Fields are sliced by byte
// position; there are no delimiter characters.
type Layout struct {
	Version string       `yaml:"version"`
	Fields  []FieldRange `yaml:"fields"`
}

// DefaultLayout is the fixed_width.v1 layout: nine contiguous fields covering
// the required column set.
func DefaultLayout() *Layout {
	return &Layout{
		Version: "fixed_width.v1",
		Fields: []FieldRange{
			{Name: "id", Start: 0, End: 10},
			{Name: "date", Start: 10, End: 20},
			{Name: "product_type", Start: 20, End: 32},
			{Name: "client_id", Start: 32, End: 42},
			{Name: "amount_or_limit", Start: 42, End: 54},
			{Name: "currency", Start: 54, End: 57},
			{Name: "country", Start: 57, End: 59},
			{Name: "is_vip", Start: 59, End: 64},
			{Name: "risk_score", Start: 64, End: 67},
		},
	}
}

// FieldNames returns the layout's field names in declaration order.
func (l *Layout) FieldNames() []string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.Name
	}
	return names
}

// slice cuts one field out of a line, tolerating short lines, and trims the
// padding whitespace fixed-width records carry.
func (f FieldRange) slice(line string) string {
	if f.Start >= len(line) {
		return ""
	}
	end := f.End
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[f.Start:end])
}

// readFixedWidth reads fixed-width lines sliced by layout. Blank lines are
// skipped; a file with zero data rows is an error.
func readFixedWidth(path string, layout *Layout) ([]admission.RawRequest, error) {
	if missing := missingColumns(layout.FieldNames()); len(missing) > 0 {
		return nil, formatError(path, "fixed-width layout missing required fields: "+strings.Join(missing, ", "), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, formatError(path, "input file not found", err)
	}
	defer f.Close()

	var rows []admission.RawRequest
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := make(map[string]string, len(layout.Fields))
		for _, field := range layout.Fields {
			row[field.Name] = field.slice(line)
		}
		rows = append(rows, rowToRequest(row))
	}
	if err := scanner.Err(); err != nil {
		return nil, formatError(path, "cannot scan input", err)
	}
	if len(rows) == 0 {
		return nil, formatError(path, "fixed-width input has no data rows", nil)
	}
	return rows, nil
}
