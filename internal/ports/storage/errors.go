// Package storage define los errores que comparten los adapters de persistencia.
package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict: la fila cambió (versión distinta) o fue borrada entre la lectura y la escritura.
	ErrConflict = errors.New("version conflict")
)
