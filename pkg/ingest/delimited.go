package ingest

import (
	"bufio"
	"os"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// delimiter candidates, most specific first. Comma is last so that a pipe or
// tab separated file containing commas in free text still detects correctly.
var delimiterCandidates = []rune{'|', '\t', ';', ','}

// detectDelimiter scans the first non-blank line for a known separator.
func detectDelimiter(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, formatError(path, "input file not found", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), "\ufeff")
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, d := range delimiterCandidates {
			if strings.ContainsRune(line, d) {
				return d, nil
			}
		}
		return 0, formatError(path, "no delimiter detected in first data line; use the fixed-width (cobol) format for undelimited files", nil)
	}
	if err := scanner.Err(); err != nil {
		return 0, formatError(path, "cannot scan input", err)
	}
	return 0, formatError(path, "input file is empty", nil)
}

// readDelimited reads header-driven delimited text, auto-detecting the
// separator among pipe, tab, semicolon and comma.
func readDelimited(path string) ([]admission.RawRequest, error) {
	delimiter, err := detectDelimiter(path)
	if err != nil {
		return nil, err
	}
	return readSeparated(path, delimiter)
}
