package amqp

import (
	"encoding/json"
	"time"

	"finsmart/internal/records"
)

// TableSavedMessage announces that a table was rewritten on the primary
// medium. It carries no cell data; consumers re-read the table.
type TableSavedMessage struct {
	Table     string    `json:"table"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTableSavedMessage(t records.Table) *TableSavedMessage {
	return &TableSavedMessage{
		Table:     t.Name,
		Rows:      t.Len(),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TableSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TableSavedMessageFromJSON decodes a message body.
func TableSavedMessageFromJSON(data []byte) (*TableSavedMessage, error) {
	var msg TableSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
