package validation

import (
	"errors"
	"strings"
	"testing"
)

var petSchema = MustCompile(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"owner_id": {"type": ["integer", "null"]}
	},
	"required": ["name"]
}`)

type petInput struct {
	Name    string `json:"name"`
	OwnerID *int64 `json:"owner_id"`
}

func TestDecodeJSON_OK(t *testing.T) {
	var in petInput
	if err := DecodeJSON(strings.NewReader(`{"name":"Milo","owner_id":3}`), petSchema, &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Name != "Milo" || in.OwnerID == nil || *in.OwnerID != 3 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestDecodeJSON_SchemaErrorsAreVerbatim(t *testing.T) {
	var in petInput
	err := DecodeJSON(strings.NewReader(`{"owner_id":"x"}`), petSchema, &in)

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "name is required") {
		t.Fatalf("expected required message, got %q", msg)
	}
	if !strings.Contains(msg, "owner_id") {
		t.Fatalf("expected owner_id type message, got %q", msg)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var in petInput
	err := DecodeJSON(strings.NewReader(`{"name":`), petSchema, &in)
	if !errors.Is(err, ErrMalformedBody) {
		t.Fatalf("expected ErrMalformedBody, got %v", err)
	}
}

func TestFields(t *testing.T) {
	var f Fields
	f.Require("name", "  ")
	f.Require("code", "c1")
	f.RequireID("pet_id", 0)

	err := f.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "name cannot be empty; pet_id is required" {
		t.Fatalf("unexpected message %q", got)
	}

	var ok Fields
	ok.Require("name", "Milo")
	if ok.Err() != nil {
		t.Fatalf("expected nil error")
	}
}
