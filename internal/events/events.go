// Package events announces ledger changes to other services.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

const TypeTransactionsChanged = "transactions.changed"

// Reason says which ledger operation produced a change.
type Reason string

const (
	ReasonMaterialized Reason = "materialized"
	ReasonCreated      Reason = "created"
	ReasonEdited       Reason = "edited"
	ReasonDeleted      Reason = "deleted"
)

type Event struct {
	Type           string      `json:"type"`
	Reason         Reason      `json:"reason"`
	UserID         uuid.UUID   `json:"userID"`
	TransactionIDs []uuid.UUID `json:"transactionIDs"`
	Timestamp      time.Time   `json:"timestamp"`
}

func NewTransactionsChanged(reason Reason, user uuid.UUID, ids []uuid.UUID, at time.Time) Event {
	return Event{
		Type:           TypeTransactionsChanged,
		Reason:         reason,
		UserID:         user,
		TransactionIDs: ids,
		Timestamp:      at.UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
