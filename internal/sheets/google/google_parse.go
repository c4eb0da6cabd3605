package google

import (
	"fmt"
	"strings"

	"finsmart/internal/records"
)

// parseValues turns a values matrix into a table named name. The first row
// is the header.
func parseValues(name string, values [][]interface{}) records.Table {
	t := records.NewTable(name, toStrings(values[0]))
	t.Rows = make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t
}

func toValues(t records.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows)+1)
	out = append(out, toInterfaces(t.Columns))
	for _, r := range t.Rows {
		out = append(out, toInterfaces(r))
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// quoteSheet renders a tab title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a 1-based column index to its A1 letters.
func columnLetter(n int) string {
	if n < 1 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
