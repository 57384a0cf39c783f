package events

import (
	"context"
	"time"

	"pet-admin-api/internal/platform/logger"
)

type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionSoftDeleted Action = "soft_deleted"
	ActionHardDeleted Action = "hard_deleted"
)

// Event describe un cambio de ciclo de vida de una entidad.
type Event struct {
	Entity  string    `json:"entity"`
	ID      int64     `json:"id"`
	Action  Action    `json:"action"`
	Actor   int64     `json:"actor"`
	Version int64     `json:"version"`
	At      time.Time `json:"at"`
}

// Publisher es best-effort: un error se loguea, nunca revierte la mutación.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

func Nop() Publisher { return nop{} }

// Emit publica y, si falla, solo lo deja en el log del request.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("event publish failed", map[string]any{
			"entity": e.Entity,
			"id":     e.ID,
			"action": string(e.Action),
			"err":    err.Error(),
		})
	}
}
