// Package storage keeps record tables in databases: SQLite and PostgreSQL
// as header + row tables, MongoDB as one document per table.
package storage

import (
	"encoding/json"
	"fmt"

	"finsmart/internal/sheets"
)

// encodeCells is the SQLite text form of a header or row.
func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCells(table, raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sheets.ErrCorrupt, table, err)
	}
	return cells, nil
}
