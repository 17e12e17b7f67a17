package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New("lots", "lot-1", LotAssigned, map[string]string{"bidId": "bid-1"})

	assert.Equal(t, "lots.lot-1.assigned", e.Subject)
	assert.Equal(t, LotAssigned, e.Kind)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(2)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, New("bids", "b1", BidSubmitted, nil)))
	require.NoError(t, r.Publish(ctx, New("bids", "b2", BidSubmitted, nil)))
	require.NoError(t, r.Publish(ctx, New("bids", "b3", BidSubmitted, nil)), "full recorder drops events")

	got := r.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "bids.b1.submitted", got[0].Subject)
	assert.Empty(t, r.Drain())
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), New("tenders", "t1", TenderClosed, nil)))
}
