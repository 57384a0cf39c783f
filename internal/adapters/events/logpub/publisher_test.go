package logpub

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/ports/events"
)

func TestPublisher_LogsEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPublisher(logger.New(logger.Options{Level: logger.Info, Format: logger.FormatJSON, Output: &buf}))

	if err := p.Publish(context.Background(), events.Event{Entity: "user", ID: 3, Action: events.ActionSoftDeleted}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"entity":"user"`, `"action":"soft_deleted"`, `"msg":"entity event"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log, got %s", want, out)
		}
	}
}
