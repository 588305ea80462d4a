package events

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSONShape(t *testing.T) {
	user := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("X", 3600))

	e := NewTransactionsChanged(ReasonDeleted, user, []uuid.UUID{id}, at)
	data, err := e.ToJSON()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "transactions.changed",
		"reason": "deleted",
		"userID": "`+user.String()+`",
		"transactionIDs": ["`+id.String()+`"],
		"timestamp": "2024-03-01T08:00:00Z"
	}`, string(data))

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, e.UserID, back.UserID)
	assert.Equal(t, ReasonDeleted, back.Reason)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
