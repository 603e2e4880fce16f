package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// Format identifies an input file format.
type Format string

const (
	// FormatAuto resolves the format from the file extension.
	FormatAuto Format = "auto"
	// FormatCSV is comma-separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is a JSON list of objects or a {"requests": [...]} object.
	FormatJSON Format = "json"
	// FormatTxt is delimited text with an auto-detected separator.
	FormatTxt Format = "txt"
	// FormatCobol is fixed-width text sliced by a byte-range layout.
	FormatCobol Format = "cobol"
)

// RequiredColumns is the column contract every format must satisfy, in
// canonical order.
var RequiredColumns = []string{
	"id",
	"date",
	"product_type",
	"client_id",
	"amount_or_limit",
	"currency",
	"country",
	"is_vip",
	"risk_score",
}

// ResolveFormat maps a requested format to a concrete one. FormatAuto is
// resolved from the file extension; an unknown extension or unknown requested
// format yields an *InputFormatError.
func ResolveFormat(path string, requested Format) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(string(requested)))); f {
	case FormatCSV, FormatJSON, FormatTxt, FormatCobol:
		return f, nil
	case FormatAuto, "":
		// fall through to extension resolution
	default:
		return "", formatError(path, fmt.Sprintf("unknown input format %q", requested), nil)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".txt":
		return FormatTxt, nil
	case ".dat", ".cob":
		return FormatCobol, nil
	default:
		return "", formatError(path, "cannot resolve input format from extension; pass --format explicitly", nil)
	}
}

// Reader ingests admission requests. A zero Reader uses the default
// fixed-width layout; set Layout to override it.
type Reader struct {
	// Layout slices fixed-width lines. Nil means DefaultLayout.
	Layout *Layout
}

// ReadRequests reads every record from path in the given (possibly auto)
// format. On success the returned slice preserves file order and every record
// carries all required columns. Any failure is an *InputFormatError and no
// records are returned.
func (rd *Reader) ReadRequests(path string, requested Format) ([]admission.RawRequest, error) {
	format, err := ResolveFormat(path, requested)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return readCSV(path)
	case FormatJSON:
		return readJSON(path)
	case FormatTxt:
		return readDelimited(path)
	case FormatCobol:
		layout := rd.Layout
		if layout == nil {
			layout = DefaultLayout()
		}
		return readFixedWidth(path, layout)
	default:
		return nil, formatError(path, fmt.Sprintf("unknown input format %q", format), nil)
	}
}

// ReadRequests reads every record from path using a default Reader.
func ReadRequests(path string, requested Format) ([]admission.RawRequest, error) {
	var rd Reader
	return rd.ReadRequests(path, requested)
}

// missingColumns returns the required columns absent from header, preserving
// canonical order.
func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// rowToRequest builds a RawRequest from a column-name-keyed row. Absent keys
// become empty strings; the caller has already verified required columns.
func rowToRequest(row map[string]string) admission.RawRequest {
	return admission.RawRequest{
		ID:            row["id"],
		Date:          row["date"],
		ProductType:   row["product_type"],
		ClientID:      row["client_id"],
		AmountOrLimit: row["amount_or_limit"],
		Currency:      row["currency"],
		Country:       row["country"],
		IsVIP:         row["is_vip"],
		RiskScore:     row["risk_score"],
	}
}
