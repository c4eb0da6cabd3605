package records

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// synonyms maps lower-cased, underscored header spellings to canonical names.
var synonyms = map[string]string{
	"total_budget": ColTotalBudget,
	"totalbudget":  ColTotalBudget,
	"email":        ColEmail,
	"password":     ColPassword,
	"user":         ColUser,
	"tanggal":      ColDate,
	"date":         ColDate,
	"time":         ColDate,
	"kategori":     ColCategory,
	"category":     ColCategory,
	"jumlah":       ColAmount,
	"amount":       ColAmount,
	"nama":         ColName,
	"name":         ColName,
	"rating":       ColRating,
	"ulasan":       ColReview,
	"review":       ColReview,
}

// CanonicalName cleans a raw header: trim, spaces to underscores, then the
// synonym table. Unknown names only get their first character upper-cased.
func CanonicalName(raw string) string {
	name := strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")
	if c, ok := synonyms[strings.ToLower(name)]; ok {
		return c
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Normalize returns a table whose header is exactly canonical, in order.
// Source columns are matched through CanonicalName; when several resolve to
// the same canonical column the left-most wins. Missing columns are filled
// with blanks and unknown ones are dropped. The input is not modified.
func Normalize(t Table, canonical []string) Table {
	target := make(map[string]int, len(canonical))
	for i, c := range canonical {
		key := CanonicalName(c)
		if _, dup := target[key]; !dup {
			target[key] = i
		}
	}

	// source[i] is the input column feeding canonical[i], or -1.
	source := make([]int, len(canonical))
	for i := range source {
		source[i] = -1
	}
	for j, col := range t.Columns {
		i, ok := target[CanonicalName(col)]
		if !ok || source[i] != -1 {
			continue
		}
		source[i] = j
	}

	out := NewTable(t.Name, canonical)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(canonical))
		for i, j := range source {
			if j >= 0 && j < len(row) {
				cells[i] = row[j]
			}
		}
		out.Rows[r] = cells
	}
	return out
}
