package validation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// maxBody acota lo que se lee de un request antes de validar.
const maxBody = 1 << 20

var ErrMalformedBody = errors.New("invalid json")

// Error lleva el mensaje del validador tal cual, para devolverlo al cliente.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Schema es un JSON Schema compilado.
type Schema struct {
	schema *gojsonschema.Schema
}

func Compile(src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile es para schemas declarados como constantes del paquete.
func MustCompile(src string) *Schema {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateBytes valida el body crudo. Devuelve *Error si el documento no cumple,
// u otro error si el body ni siquiera es JSON.
func (s *Schema) ValidateBytes(raw []byte) error {
	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		msgs = append(msgs, re.String())
	}
	return &Error{Messages: msgs}
}

// DecodeJSON lee r, valida contra schema y decodifica en v.
func DecodeJSON(r io.Reader, schema *Schema, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if !json.Valid(raw) {
		return ErrMalformedBody
	}
	if schema != nil {
		if err := schema.ValidateBytes(raw); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// Fields acumula errores de campos obligatorios.
type Fields struct {
	msgs []string
}

func (f *Fields) Require(name, value string) {
	if strings.TrimSpace(value) == "" {
		f.msgs = append(f.msgs, name+" cannot be empty")
	}
}

func (f *Fields) RequireID(name string, id int64) {
	if id <= 0 {
		f.msgs = append(f.msgs, name+" is required")
	}
}

func (f *Fields) Check(ok bool, msg string) {
	if !ok {
		f.msgs = append(f.msgs, msg)
	}
}

// Err devuelve nil si no hubo errores.
func (f *Fields) Err() error {
	if len(f.msgs) == 0 {
		return nil
	}
	return &Error{Messages: f.msgs}
}
