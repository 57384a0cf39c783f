package session

import (
	"errors"
	"net/http"

	"pet-admin-api/internal/domain/users"
	"pet-admin-api/internal/middleware"
	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
	"pet-admin-api/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/login", loginHandler(svc))
	r.Post("/logout", logoutHandler(svc))
}

// loginHandler godoc
// @Summary Login
// @Description Valida usuario y contraseña y devuelve un token Bearer.
// @Tags session
// @Accept json
// @Produce json
// @Param payload body Credentials true "Credenciales"
// @Success 200 {object} response.Body{data=Token}
// @Failure 400 {object} response.Body
// @Failure 401 {object} response.Body
// @Failure 500 {object} response.Body
// @Router /login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Credentials
		if err := validation.DecodeJSON(r.Body, nil, &in); err != nil {
			response.ErrorWithCode(w, http.StatusBadRequest, "invalid json")
			return
		}

		tok, err := svc.Login(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingCredentials):
				response.ErrorWithCode(w, http.StatusBadRequest, "Missing credentials")
			case errors.Is(err, users.ErrWrongCredentials):
				response.ErrorWithCode(w, http.StatusUnauthorized, "Wrong credentials")
			case errors.Is(err, users.ErrInactiveUser):
				response.ErrorWithCode(w, http.StatusUnauthorized, "user is inactive")
			case errors.Is(err, ErrTokenCreation):
				response.Error(w, "Token creation error")
			default:
				logger.FromContext(r.Context()).Error("login failed", map[string]any{"err": err.Error()})
				response.Error(w, "login failed")
			}
			return
		}
		response.OKWithData(w, tok)
	}
}

// logoutHandler godoc
// @Summary Logout
// @Description Revoca el token actual.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body
// @Failure 401 {object} response.Body
// @Router /logout [post]
func logoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			response.ErrorWithCode(w, http.StatusUnauthorized, ErrNoSession.Error())
			return
		}

		if err := svc.Logout(r.Context(), claims, middleware.BearerToken(r.Header.Get("Authorization"))); err != nil {
			logger.FromContext(r.Context()).Error("logout failed", map[string]any{"user_id": claims.UserID, "err": err.Error()})
			response.Error(w, "logout failed")
			return
		}
		response.OK(w)
	}
}
