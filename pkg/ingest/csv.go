package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// readCSV reads a comma-separated file with a header row.
func readCSV(path string) ([]admission.RawRequest, error) {
	return readSeparated(path, ',')
}

// readSeparated reads a header-driven delimited file with the given
// separator. Shared by the csv and txt formats.
func readSeparated(path string, separator rune) ([]admission.RawRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, formatError(path, "input file not found", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = separator
	r.FieldsPerRecord = -1 // short rows pad to "", checked per column below
	r.TrimLeadingSpace = false

	header, err := r.Read()
	if err == io.EOF {
		return nil, formatError(path, "input has no header row", nil)
	}
	if err != nil {
		return nil, formatError(path, "cannot read header row", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff") // UTF-8 BOM

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, formatError(path, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	var rows []admission.RawRequest
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatError(path, "malformed row", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, rowToRequest(row))
	}
	return rows, nil
}
