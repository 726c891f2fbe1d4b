package statsCodec

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	recordSeparator = ";"
	fieldSeparator  = ","
)

// Record is a single "name,value" entry of the admin text format.
type Record struct {
	Name  string
	Value int
}

// Encode joins records with ';' and each record's fields with ','.
// Names containing either separator are not escaped.
func Encode(records []Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.Name+fieldSeparator+strconv.Itoa(r.Value))
	}
	return strings.Join(parts, recordSeparator)
}

// Decode splits text on ';' and every entry on ','. The name is trimmed and
// the value falls back to 0 when it is not a number.
func Decode(text string) []Record {
	entries := strings.Split(text, recordSeparator)
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Split(entry, fieldSeparator)
		record := Record{Name: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			record.Value = parseLeadingInt(fields[1])
		}
		records = append(records, record)
	}
	return records
}

// parseLeadingInt reads an optionally signed run of digits after leading
// whitespace and ignores whatever follows, so "7 goles" is 7 and "x" is 0.
func parseLeadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
