package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Ledger kinds carried by LedgerEvent.
const (
	KindAsset    = "asset"
	KindCategory = "asset_category"
	KindSpending = "spending"
	KindRevenue  = "revenue"
)

// Ledger actions carried by LedgerEvent.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// LedgerEvent announces that a ledger record changed. It carries only the
// reference; consumers reload the ledgers they need.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind, action string, id int64, date string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEvent) String() string {
	return fmt.Sprintf("%s %s #%d", m.Kind, m.Action, m.ID)
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event and rejects ones without a kind or
// action.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Action == "" {
		return nil, fmt.Errorf("ledger event missing kind or action")
	}
	return &msg, nil
}
