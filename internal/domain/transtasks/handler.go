package transtasks

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
			"data_source_id": {"type": "integer", "minimum": 1},
			"table_name":     {"type": "string"},
			"table_comment":  {"type": "string"},
			"remark":         {"type": "string"}
		},
		"required": ["data_source_id", "table_name", "table_comment"]
	}`)
	updateSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"trans_task_id":  {"type": "integer", "minimum": 1},
			"data_source_id": {"type": "integer", "minimum": 1},
			"table_name":     {"type": "string"},
			"table_comment":  {"type": "string"},
			"remark":         {"type": "string"}
		},
		"required": ["trans_task_id", "data_source_id", "table_name", "table_comment"]
	}`)
)

func RegisterRoutes(r chi.Router, svc *Service, ident *middleware.IdentityResolver) {
	r.Route("/transtask", func(pr chi.Router) {
		pr.Get("/", listTransTasksHandler(svc))
		pr.Get("/{id}", getTransTaskHandler(svc))

		pr.Group(func(mr chi.Router) {
			mr.Use(middleware.RequireActor(ident))
			mr.Post("/", createTransTaskHandler(svc))
			mr.Put("/", updateTransTaskHandler(svc))
			mr.Delete("/{id}", softDeleteTransTaskHandler(svc))
			mr.Delete("/delete/{id}", hardDeleteTransTaskHandler(svc))
		})
	})
}

// listTransTasksHandler godoc
// @Summary Listar tareas de transferencia
// @Description Devuelve las tareas no borradas.
// @Tags transtasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body{data=[]View}
// @Failure 401 {object} response.Body
// @Router /transtask [get]
func listTransTasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("list trans tasks failed", map[string]any{"err": err.Error()})
			items = []View{}
		}
		response.OKWithData(w, items)
	}
}

// getTransTaskHandler godoc
// @Summary Detalle de tarea
// @Tags transtasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID de la tarea"
// @Success 200 {object} response.Body{data=View}
// @Failure 404 {object} response.Body
// @Router /transtask/{id} [get]
func getTransTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "trans task not found")
			return
		}

		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.FromContext(r.Context()).Error("get trans task failed", map[string]any{"id": id, "err": err.Error()})
			}
			response.ErrorWithCode(w, http.StatusNotFound, "trans task not found")
			return
		}
		response.OKWithData(w, p)
	}
}

// createTransTaskHandler godoc
// @Summary Crear tarea
// @Tags transtasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Tarea; row_count y last_trans_time los fija el servidor"
// @Success 200 {object} response.Body{data=View}
// @Failure 400 {object} response.Body
// @Failure 500 {object} response.Body
// @Router /transtask [post]
func createTransTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in CreateInput
		if err := validation.DecodeJSON(r.Body, createSchema, &in); err != nil {
			writeError(w, r, err, "create trans task failed")
			return
		}

		p, err := svc.Create(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "create trans task failed")
			return
		}
		response.OKWithData(w, p)
	}
}

// updateTransTaskHandler godoc
// @Summary Actualizar tarea
// @Description No modifica row_count ni last_trans_time.
// @Tags transtasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body UpdateInput true "Tarea con trans_task_id"
// @Success 200 {object} response.Body{data=View}
// @Failure 400 {object} response.Body
// @Failure 404 {object} response.Body
// @Failure 409 {object} response.Body
// @Router /transtask [put]
func updateTransTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in UpdateInput
		if err := validation.DecodeJSON(r.Body, updateSchema, &in); err != nil {
			writeError(w, r, err, "update trans task failed")
			return
		}

		p, err := svc.Update(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "update trans task failed")
			return
		}
		response.OKWithData(w, p)
	}
}

// softDeleteTransTaskHandler godoc
// @Summary Borrado lógico de tarea
// @Tags transtasks
// @Security BearerAuth
// @Param id path int true "ID de la tarea"
// @Success 200 {object} response.Body
// @Router /transtask/{id} [delete]
func softDeleteTransTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "trans task not found")
			return
		}

		if err := svc.SoftDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete trans task failed")
			return
		}
		response.OK(w)
	}
}

// hardDeleteTransTaskHandler godoc
// @Summary Borrado físico de tarea
// @Tags transtasks
// @Security BearerAuth
// @Param id path int true "ID de la tarea"
// @Success 200 {object} response.Body
// @Router /transtask/delete/{id} [delete]
func hardDeleteTransTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "trans task not found")
			return
		}

		if err := svc.HardDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete trans task failed")
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
		response.ErrorWithCode(w, http.StatusNotFound, "trans task not found")
	case errors.Is(err, ErrConflict):
		response.ErrorWithCode(w, http.StatusConflict, "trans task was modified concurrently, reload and retry")
	default:
		logger.FromContext(r.Context()).Error(failMsg, map[string]any{"err": err.Error()})
		response.Error(w, failMsg)
	}
}
