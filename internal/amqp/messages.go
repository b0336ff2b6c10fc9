package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportMessage represents a lightweight message for exporting a report to Google Sheets.
// Contains only the ID and version, the worker will fetch the full report from database.
type ReportExportMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportExportMessage creates a new export message with just ID and version
func NewReportExportMessage(id string, version int64) *ReportExportMessage {
	return &ReportExportMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
