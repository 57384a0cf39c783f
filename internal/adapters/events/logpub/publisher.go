package logpub

import (
	"context"

	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/ports/events"
)

// Publisher escribe los eventos en el log. Se usa cuando no hay brokers Kafka.
type Publisher struct {
	log logger.Logger
}

func NewPublisher(log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{log: log}
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	p.log.Info("entity event", map[string]any{
		"entity":  e.Entity,
		"id":      e.ID,
		"action":  string(e.Action),
		"actor":   e.Actor,
		"version": e.Version,
		"at":      e.At,
	})
	return nil
}
