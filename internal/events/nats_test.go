package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATS_Publish(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL is not set")
	}

	publisher, err := NewNATS(url)
	require.NoError(t, err)
	defer publisher.Close()

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	subscription, err := sub.ChanSubscribe("lots.*.assigned", msgs)
	require.NoError(t, err)
	defer subscription.Unsubscribe()
	require.NoError(t, sub.Flush())

	require.NoError(t, publisher.Publish(context.Background(), New("lots", "lot-1", LotAssigned, map[string]string{"selectedBidId": "bid-1"})))

	select {
	case msg := <-msgs:
		assert.Equal(t, "lots.lot-1.assigned", msg.Subject)
		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, LotAssigned, got.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
