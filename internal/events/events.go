// Package events публикует доменные события после успешной фиксации изменений.
package events

import (
	"context"
	"time"
)

// Event - доменное событие.
type Event struct {
	Subject    string    `json:"subject"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

const (
	LotAssigned     = "assigned"
	LotReopened     = "reopened"
	LotFavorite     = "favorite"
	BidSubmitted    = "submitted"
	BidCompliance   = "compliance"
	AccessRequested = "requested"
	AccessDecided   = "decided"
	TenderClosed    = "closed"
)

// Publisher отправляет события подписчикам.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New собирает событие с темой вида "<entity>.<id>.<kind>".
func New(entity, id, kind string, payload any) Event {
	return Event{
		Subject:    entity + "." + id + "." + kind,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Noop отбрасывает события. Используется, когда брокер не настроен.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder запоминает опубликованные события.
type Recorder struct {
	ch chan Event
}

// NewRecorder создает Recorder с буфером на size событий.
func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Event, size)}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	select {
	case r.ch <- event:
	default:
	}
	return nil
}

// Drain возвращает все накопленные события.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-r.ch:
			out = append(out, e)
		default:
			return out
		}
	}
}
