package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS публикует события в NATS; тема события используется как subject.
type NATS struct {
	conn *nats.Conn
}

// NewNATS подключается к серверу NATS.
func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("tender-portal"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(event.Subject, data); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", event.Subject, err)
	}
	return nil
}

// Close сбрасывает буфер и закрывает соединение.
func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
