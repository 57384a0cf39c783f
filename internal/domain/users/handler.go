package users

import (
	"errors"
	"net/http"
	"strconv"

	"pet-admin-api/internal/middleware"
	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
	"pet-admin-api/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

var (
	createSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"username":    {"type": "string"},
			"password":    {"type": "string"},
			"first_name":  {"type": "string"},
			"last_name":   {"type": "string"},
			"email":       {"type": ["string", "null"], "format": "email"},
			"active":      {"type": "boolean"},
			"permissions": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["username", "password", "active"]
	}`)
	updateSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"user_id":     {"type": "integer", "minimum": 1},
			"username":    {"type": "string"},
			"password":    {"type": "string"},
			"first_name":  {"type": "string"},
			"last_name":   {"type": "string"},
			"email":       {"type": ["string", "null"], "format": "email"},
			"active":      {"type": ["boolean", "null"]},
			"permissions": {"type": ["array", "null"], "items": {"type": "string"}}
		},
		"required": ["user_id", "username"]
	}`)
)

func RegisterRoutes(r chi.Router, svc *Service, ident *middleware.IdentityResolver) {
	r.Route("/user", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc))
		ur.Get("/{id}", getUserHandler(svc))

		ur.Group(func(mr chi.Router) {
			mr.Use(middleware.RequireActor(ident))
			mr.Post("/", createUserHandler(svc))
			mr.Put("/", updateUserHandler(svc))
			mr.Delete("/{id}", softDeleteUserHandler(svc))
			mr.Delete("/delete/{id}", hardDeleteUserHandler(svc))
		})
	})
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body{data=[]ListView}
// @Router /user [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("list users failed", map[string]any{"err": err.Error()})
			items = []ListView{}
		}
		response.OKWithData(w, items)
	}
}

// getUserHandler godoc
// @Summary Detalle de usuario
// @Description Incluye permisos. La password nunca se devuelve.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del usuario"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 404 {object} response.Body
// @Router /user/{id} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "user not found")
			return
		}
		u, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.FromContext(r.Context()).Error("get user failed", map[string]any{"id": id, "err": err.Error()})
			}
			response.ErrorWithCode(w, http.StatusNotFound, "user not found")
			return
		}
		response.OKWithData(w, u)
	}
}

// createUserHandler godoc
// @Summary Crear usuario
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Usuario; la password se guarda con bcrypt"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 400 {object} response.Body
// @Failure 500 {object} response.Body
// @Router /user [post]
func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in CreateInput
		if err := validation.DecodeJSON(r.Body, createSchema, &in); err != nil {
			writeError(w, r, err, "create user failed")
			return
		}
		u, err := svc.Create(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "create user failed")
			return
		}
		response.OKWithData(w, u)
	}
}

// updateUserHandler godoc
// @Summary Actualizar usuario
// @Description password vacía conserva la actual; permissions ausente también.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body UpdateInput true "Usuario con user_id"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Failure 409 {object} response.Body
// @Router /user [put]
func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in UpdateInput
		if err := validation.DecodeJSON(r.Body, updateSchema, &in); err != nil {
			writeError(w, r, err, "update user failed")
			return
		}
		u, err := svc.Update(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "update user failed")
			return
		}
		response.OKWithData(w, u)
	}
}

// @Summary Borrado lógico de usuario
// @Tags users
// @Security BearerAuth
// @Param id path int true "ID del usuario"
// @Success 200 {object} response.Body
// @Router /user/{id} [delete]
func softDeleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "user not found")
			return
		}
		if err := svc.SoftDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete user failed")
			return
		}
		response.OK(w)
	}
}

// @Summary Borrado físico de usuario
// @Tags users
// @Security BearerAuth
// @Param id path int true "ID del usuario"
// @Success 200 {object} response.Body
// @Router /user/delete/{id} [delete]
func hardDeleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "user not found")
			return
		}
		if err := svc.HardDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete user failed")
			return
		}
		response.OK(w)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.ErrorWithCode(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, validation.ErrMalformedBody):
		response.ErrorWithCode(w, http.StatusBadRequest, "invalid json")
	case errors.Is(err, ErrNotFound):
		response.ErrorWithCode(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrConflict):
		// también llega acá un username repetido (índice único)
		response.ErrorWithCode(w, http.StatusConflict, "user conflict: username taken or record modified concurrently")
	default:
		logger.FromContext(r.Context()).Error(failMsg, map[string]any{"err": err.Error()})
		response.Error(w, failMsg)
	}
}
