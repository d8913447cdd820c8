// Package csvx parses the loosely structured CSV exports produced by the
// gym-management platform. The exports are not RFC 4180 clean: quotes can
// appear mid-field, rows are frequently short, and malformed rows must still
// yield usable data. Parsing is therefore best-effort and never fails.
package csvx

import "strings"

// Record is one CSV row keyed by the trimmed header column name.
type Record map[string]string

// Parse splits raw CSV text into records. The first line is the header.
// Blank lines are skipped; short rows pad missing columns with "".
func Parse(content string) []Record {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return nil
	}

	headers := splitLine(strings.TrimRight(lines[0], "\r"))
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}

		values := splitLine(line)
		record := make(Record, len(headers))
		for i, header := range headers {
			if i < len(values) {
				record[header] = strings.TrimSpace(values[i])
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

// splitLine scans a single line character by character, toggling an
// in-quotes flag so quoted fields keep their literal commas. Quote
// characters themselves are dropped from the field value.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}
