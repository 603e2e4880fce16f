package ingest

import (
	"errors"
	"strings"
	"testing"
)

func delimitedContent(sep string) string {
	header := strings.ReplaceAll(csvHeader, ",", sep)
	row := strings.ReplaceAll("REQ-1,2026-02-10,cuenta,CLI-1,1000,ARS,AR,false,15", ",", sep)
	return header + "\n" + row + "\n"
}

func TestReadRequests_DelimitedSeparators(t *testing.T) {
	tests := []struct {
		name string
		sep  string
	}{
		{name: "pipe", sep: "|"},
		{name: "tab", sep: "\t"},
		{name: "semicolon", sep: ";"},
		{name: "comma", sep: ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "requests.txt", delimitedContent(tt.sep))

			rows, err := ReadRequests(path, FormatAuto)
			if err != nil {
				t.Fatalf("ReadRequests() error = %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("len(rows) = %d, want 1", len(rows))
			}
			if rows[0].ID != "REQ-1" || rows[0].Currency != "ARS" || rows[0].RiskScore != "15" {
				t.Errorf("rows[0] = %+v", rows[0])
			}
		})
	}
}

func TestReadRequests_DelimitedLeadingBlankLines(t *testing.T) {
	path := writeInput(t, "requests.txt", "\n\n"+delimitedContent("|"))

	// Detection skips blank lines; the csv reader also skips them.
	rows, err := ReadRequests(path, FormatTxt)
	if err != nil {
		t.Fatalf("ReadRequests() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want 1", len(rows))
	}
}

func TestReadRequests_DelimitedNoSeparator(t *testing.T) {
	path := writeInput(t, "requests.txt", "iddateproducttype\nREQ0012026\n")

	_, err := ReadRequests(path, FormatTxt)
	var ferr *InputFormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want *InputFormatError", err)
	}
	if !strings.Contains(err.Error(), "fixed-width") {
		t.Errorf("error %q should point the caller at the fixed-width format", err)
	}
}

func TestReadRequests_DelimitedEmptyFile(t *testing.T) {
	path := writeInput(t, "requests.txt", "\n\n\n")

	_, err := ReadRequests(path, FormatTxt)
	if err == nil {
		t.Fatal("ReadRequests() error = nil, want error for blank file")
	}
}
