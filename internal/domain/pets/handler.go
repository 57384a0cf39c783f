package pets

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
			"name":        {"type": "string"},
			"birth_date":  {"type": ["string", "null"]},
			"pet_type_id": {"type": ["integer", "null"]},
			"owner_id":    {"type": ["integer", "null"]}
		},
		"required": ["name"]
	}`)
	updateSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"pet_id":      {"type": "integer", "minimum": 1},
			"name":        {"type": "string"},
			"birth_date":  {"type": ["string", "null"]},
			"pet_type_id": {"type": ["integer", "null"]},
			"owner_id":    {"type": ["integer", "null"]}
		},
		"required": ["pet_id", "name"]
	}`)
)

func RegisterRoutes(r chi.Router, svc *Service, ident *middleware.IdentityResolver) {
	r.Route("/pet", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{id}", getPetHandler(svc))

		// Mutaciones: necesitan el usuario actual para auditoría
		pr.Group(func(mr chi.Router) {
			mr.Use(middleware.RequireActor(ident))
			mr.Post("/", createPetHandler(svc))
			mr.Put("/", updatePetHandler(svc))
			mr.Delete("/{id}", softDeletePetHandler(svc))
			mr.Delete("/delete/{id}", hardDeletePetHandler(svc))
		})
	})
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Devuelve las mascotas no borradas. Ante un error de storage devuelve lista vacía.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body{data=[]View}
// @Failure 401 {object} response.Body
// @Router /pet [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("list pets failed", map[string]any{"err": err.Error()})
			items = []View{}
		}
		response.OKWithData(w, items)
	}
}

// getPetHandler godoc
// @Summary Detalle de mascota
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la mascota"
// @Success 200 {object} response.Body{data=View}
// @Failure 404 {object} response.Body
// @Router /pet/{id} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "pet not found")
			return
		}

		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.FromContext(r.Context()).Error("get pet failed", map[string]any{"id": id, "err": err.Error()})
			}
			response.ErrorWithCode(w, http.StatusNotFound, "pet not found")
			return
		}
		response.OKWithData(w, p)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Datos de la mascota"
// @Success 200 {object} response.Body{data=View}
// @Failure 400 {object} response.Body
// @Failure 500 {object} response.Body
// @Router /pet [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in CreateInput
		if err := validation.DecodeJSON(r.Body, createSchema, &in); err != nil {
			writeError(w, r, err, "create pet failed")
			return
		}

		p, err := svc.Create(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "create pet failed")
			return
		}
		response.OKWithData(w, p)
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Reemplaza los campos de la mascota indicada en pet_id. Si otro request la modificó antes responde 409.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body UpdateInput true "Mascota con pet_id"
// @Success 200 {object} response.Body{data=View}
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Failure 409 {object} response.Body
// @Router /pet [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in UpdateInput
		if err := validation.DecodeJSON(r.Body, updateSchema, &in); err != nil {
			writeError(w, r, err, "update pet failed")
			return
		}

		p, err := svc.Update(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "update pet failed")
			return
		}
		response.OKWithData(w, p)
	}
}

// softDeletePetHandler godoc
// @Summary Borrado lógico de mascota
// @Tags pets
// @Security BearerAuth
// @Param id path int true "ID de la mascota"
// @Success 200 {object} response.Body
// @Router /pet/{id} [delete]
func softDeletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "pet not found")
			return
		}

		if err := svc.SoftDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete pet failed")
			return
		}
		response.OK(w)
	}
}

// hardDeletePetHandler godoc
// @Summary Borrado físico de mascota
// @Tags pets
// @Security BearerAuth
// @Param id path int true "ID de la mascota"
// @Success 200 {object} response.Body
// @Router /pet/delete/{id} [delete]
func hardDeletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "pet not found")
			return
		}

		if err := svc.HardDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete pet failed")
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

// writeError: validación y conflictos llegan al cliente; el resto se loguea
// y sale como un 500 genérico.
func writeError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.ErrorWithCode(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, validation.ErrMalformedBody):
		response.ErrorWithCode(w, http.StatusBadRequest, "invalid json")
	case errors.Is(err, ErrNotFound):
		response.ErrorWithCode(w, http.StatusNotFound, "pet not found")
	case errors.Is(err, ErrConflict):
		response.ErrorWithCode(w, http.StatusConflict, "pet was modified concurrently, reload and retry")
	default:
		logger.FromContext(r.Context()).Error(failMsg, map[string]any{"err": err.Error()})
		response.Error(w, failMsg)
	}
}
