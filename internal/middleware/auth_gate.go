package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/tokens"
)

const apiPrefix = "/api"

type GateOptions struct {
	Verifier auth.AuthVerifier
	// Revocations es opcional: sin store no se chequean jti revocados.
	Revocations tokens.Store

	// Public: rutas sin token. Authenticated: token requerido, sin chequeo de permiso.
	Public        []string
	Authenticated []string
}

// AuthGate verifica el token y el permiso sobre la ruta antes del dispatch.
// Los paths se comparan sin el prefijo /api.
func AuthGate(opts GateOptions) func(http.Handler) http.Handler {
	public := toSet(opts.Public)
	authOnly := toSet(opts.Authenticated)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := stripAPI(r.URL.Path)
			if _, ok := public[path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				response.ErrorWithCode(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			claims, err := opts.Verifier.Verify(r.Context(), BearerToken(header))
			if err != nil {
				response.ErrorWithCode(w, http.StatusUnauthorized, "token verification failed: "+err.Error())
				return
			}

			if opts.Revocations != nil && claims.TokenID != "" {
				revoked, err := opts.Revocations.IsRevoked(r.Context(), claims.TokenID)
				if err != nil {
					// sin store no podemos asegurar que no esté revocado
					logger.FromContext(r.Context()).Error("revocation lookup failed", map[string]any{"err": err.Error()})
					response.ErrorWithCode(w, http.StatusUnauthorized, "token verification failed: revocation check unavailable")
					return
				}
				if revoked {
					response.ErrorWithCode(w, http.StatusUnauthorized, "token verification failed: token revoked")
					return
				}
			}

			if _, ok := authOnly[path]; !ok && !Permitted(claims.Permissions, path) {
				logger.FromContext(r.Context()).Warn("unauthorized url", map[string]any{
					"path":    path,
					"user_id": claims.UserID,
				})
				response.ErrorWithCode(w, http.StatusUnauthorized, "unauthorized url: "+path)
				return
			}

			r.Header.Set(UserIDHeader, strconv.FormatInt(claims.UserID, 10))
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Permitted arranca en "no autorizado" y solo cambia si algún permiso coincide.
// "/pet" autoriza exactamente /pet; "/pet/*" autoriza /pet y todo lo que cuelga de /pet/.
func Permitted(permissions []string, path string) bool {
	authorized := false
	for _, p := range permissions {
		p = stripAPI(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if base, ok := strings.CutSuffix(p, "/*"); ok {
			if path == base || strings.HasPrefix(path, base+"/") {
				authorized = true
				break
			}
			continue
		}
		if p == path {
			authorized = true
			break
		}
	}
	return authorized
}

func stripAPI(path string) string {
	if rest, ok := strings.CutPrefix(path, apiPrefix); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
		if rest == "" {
			return "/"
		}
		return rest
	}
	return path
}

func toSet(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		out[stripAPI(p)] = struct{}{}
	}
	return out
}
