package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage is the wire form of a ledger change notification.
// It names the household and month whose figures changed; consumers
// fetch the current numbers from the database, so a lost duplicate or
// reordering is harmless.
type LedgerEventMessage struct {
	Kind        string    `json:"kind"`
	HouseholdID string    `json:"household_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a message stamped with the current time
func NewLedgerEventMessage(kind, householdID string, year, month int) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:        kind,
		HouseholdID: householdID,
		Year:        year,
		Month:       month,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
