// Package response implementa el envelope JSON común a todos los endpoints:
// {"code": <int>, "message": <string>, "data": <opcional>}.
// El status HTTP sigue al code.
package response

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const (
	MessageSuccess       = "Success"
	MessageInternalError = "Internal Server Error"
)

type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (b Body) IsSuccess() bool { return b.Code == http.StatusOK }

func OK(w http.ResponseWriter) {
	Write(w, Body{Code: http.StatusOK, Message: MessageSuccess})
}

func OKWithData(w http.ResponseWriter, data any) {
	Write(w, Body{Code: http.StatusOK, Message: MessageSuccess, Data: data})
}

func OKWithDataAndMessage(w http.ResponseWriter, data any, message string) {
	Write(w, Body{Code: http.StatusOK, Message: message, Data: data})
}

// Error responde con code 500 salvo que se indique otro.
func Error(w http.ResponseWriter, message string) {
	ErrorWithCode(w, http.StatusInternalServerError, message)
}

func ErrorWithCode(w http.ResponseWriter, code int, message string) {
	if message == "" {
		message = MessageInternalError
	}
	Write(w, Body{Code: code, Message: message})
}

func Write(w http.ResponseWriter, b Body) {
	status := b.Code
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

// Decode lee el body JSON en v.
func Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
