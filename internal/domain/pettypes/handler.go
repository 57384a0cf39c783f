package pettypes

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
		"properties": {"color": {"type": "string"}},
		"required": ["color"]
	}`)
	updateSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"pet_type_id": {"type": "integer", "minimum": 1},
			"color":       {"type": "string"}
		},
		"required": ["pet_type_id", "color"]
	}`)
)

// RegisterRoutes: pet_type no lleva auditoría, así que no resuelve identidad.
// Los dos DELETE borran físicamente.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pet_type", func(pr chi.Router) {
		pr.Get("/", listPetTypesHandler(svc))
		pr.Post("/", createPetTypeHandler(svc))
		pr.Put("/", updatePetTypeHandler(svc))
		pr.Get("/{id}", getPetTypeHandler(svc))
		pr.Delete("/{id}", deletePetTypeHandler(svc))
		pr.Delete("/delete/{id}", deletePetTypeHandler(svc))
	})
}

// listPetTypesHandler godoc
// @Summary Listar tipos de mascota
// @Tags pet_types
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body{data=[]PetType}
// @Router /pet_type [get]
func listPetTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("list pet types failed", map[string]any{"err": err.Error()})
			items = []PetType{}
		}
		response.OKWithData(w, items)
	}
}

// getPetTypeHandler godoc
// @Summary Detalle de tipo de mascota
// @Tags pet_types
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del tipo"
// @Success 200 {object} response.Body{data=PetType}
// @Failure 404 {object} response.Body
// @Router /pet_type/{id} [get]
func getPetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "pet type not found")
			return
		}
		pt, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.FromContext(r.Context()).Error("get pet type failed", map[string]any{"id": id, "err": err.Error()})
			}
			response.ErrorWithCode(w, http.StatusNotFound, "pet type not found")
			return
		}
		response.OKWithData(w, pt)
	}
}

// createPetTypeHandler godoc
// @Summary Crear tipo de mascota
// @Tags pet_types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Tipo de mascota"
// @Success 200 {object} response.Body{data=PetType}
// @Failure 400 {object} response.Body
// @Router /pet_type [post]
func createPetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in CreateInput
		if err := validation.DecodeJSON(r.Body, createSchema, &in); err != nil {
			writeError(w, r, err, "create pet type failed")
			return
		}
		pt, err := svc.Create(r.Context(), in, callerID(r))
		if err != nil {
			writeError(w, r, err, "create pet type failed")
			return
		}
		response.OKWithData(w, pt)
	}
}

// updatePetTypeHandler godoc
// @Summary Actualizar tipo de mascota
// @Tags pet_types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body UpdateInput true "Tipo con pet_type_id"
// @Success 200 {object} response.Body{data=PetType}
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /pet_type [put]
func updatePetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in UpdateInput
		if err := validation.DecodeJSON(r.Body, updateSchema, &in); err != nil {
			writeError(w, r, err, "update pet type failed")
			return
		}
		pt, err := svc.Update(r.Context(), in, callerID(r))
		if err != nil {
			writeError(w, r, err, "update pet type failed")
			return
		}
		response.OKWithData(w, pt)
	}
}

// deletePetTypeHandler godoc
// @Summary Borrar tipo de mascota
// @Description Borrado físico (pet_type no tiene borrado lógico).
// @Tags pet_types
// @Security BearerAuth
// @Param id path int true "ID del tipo"
// @Success 200 {object} response.Body
// @Router /pet_type/{id} [delete]
// @Router /pet_type/delete/{id} [delete]
func deletePetTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "pet type not found")
			return
		}
		if err := svc.Delete(r.Context(), id, callerID(r)); err != nil {
			writeError(w, r, err, "delete pet type failed")
			return
		}
		response.OK(w)
	}
}

func callerID(r *http.Request) int64 {
	c, _ := middleware.GetClaims(r.Context())
	return c.UserID
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
		response.ErrorWithCode(w, http.StatusNotFound, "pet type not found")
	default:
		logger.FromContext(r.Context()).Error(failMsg, map[string]any{"err": err.Error()})
		response.Error(w, failMsg)
	}
}
