package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pet-admin-api/internal/ports/events"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter es la parte de *kafka.Writer que usamos (los tests inyectan un fake).
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// DefaultTimeout acota cada Publish: con el broker caído el request no espera más que esto.
const DefaultTimeout = 2 * time.Second

type Publisher struct {
	w       MessageWriter
	timeout time.Duration
}

func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w, timeout: DefaultTimeout}
}

// WithTimeout cambia el límite por Publish; d <= 0 deja el default.
func (p *Publisher) WithTimeout(d time.Duration) *Publisher {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// NewWriter arma el writer del proceso. El topic va en el writer, no en cada mensaje.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           DefaultTimeout,
		MaxAttempts:            1,
		AllowAutoTopicCreation: true,
	}
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka marshal event: %w", err)
	}

	// key = entidad + id: los eventos de una misma fila caen en la misma partición
	msg := kafkago.Message{
		Key:   []byte(e.Entity + ":" + strconv.FormatInt(e.ID, 10)),
		Value: payload,
		Time:  e.At,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(e.Action)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s/%s: %w", e.Entity, e.Action, err)
	}
	return nil
}
