package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
)

// Recover reemplaza a chimw.Recoverer: loguea el panic y responde con el envelope 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered", map[string]any{
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			})
			response.Error(w, response.MessageInternalError)
		}()
		next.ServeHTTP(w, r)
	})
}
