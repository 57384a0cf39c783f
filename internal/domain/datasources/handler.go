package datasources

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

const connectionProps = `
	"code":        {"type": "string"},
	"name":        {"type": "string"},
	"remark":      {"type": "string"},
	"db_type":     {"type": "string"},
	"db_host":     {"type": "string"},
	"db_port":     {"type": "integer", "minimum": 0, "maximum": 65535},
	"db_name":     {"type": "string"},
	"db_username": {"type": "string"},
	"db_password": {"type": "string"}`

var (
	createSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {` + connectionProps + `},
		"required": ["code", "name", "db_type", "db_name", "db_password"]
	}`)
	updateSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"data_source_id": {"type": "integer", "minimum": 1},` + connectionProps + `},
		"required": ["data_source_id", "code", "name", "db_type", "db_name"]
	}`)
)

func RegisterRoutes(r chi.Router, svc *Service, ident *middleware.IdentityResolver) {
	r.Route("/datasource", func(dr chi.Router) {
		dr.Get("/", listDataSourcesHandler(svc))
		dr.Get("/{id}", getDataSourceHandler(svc))
		dr.Get("/test/{id}", testDataSourceHandler(svc))

		dr.Group(func(mr chi.Router) {
			mr.Use(middleware.RequireActor(ident))
			mr.Post("/", createDataSourceHandler(svc))
			mr.Put("/", updateDataSourceHandler(svc))
			mr.Delete("/{id}", softDeleteDataSourceHandler(svc))
			mr.Delete("/delete/{id}", hardDeleteDataSourceHandler(svc))
		})
	})
}

// listDataSourcesHandler godoc
// @Summary Listar data sources
// @Description El listado no incluye host ni credenciales.
// @Tags datasources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Body{data=[]ListView}
// @Router /datasource [get]
func listDataSourcesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("list data sources failed", map[string]any{"err": err.Error()})
			items = []ListView{}
		}
		response.OKWithData(w, items)
	}
}

// getDataSourceHandler godoc
// @Summary Detalle de data source
// @Tags datasources
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del data source"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 404 {object} response.Body
// @Router /datasource/{id} [get]
func getDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
			return
		}
		d, err := svc.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.FromContext(r.Context()).Error("get data source failed", map[string]any{"id": id, "err": err.Error()})
			}
			response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
			return
		}
		response.OKWithData(w, d)
	}
}

// testDataSourceHandler godoc
// @Summary Probar conexión
// @Description Descifra la credencial guardada y abre una conexión descartable contra la base destino.
// @Tags datasources
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del data source"
// @Success 200 {object} response.Body{data=bool}
// @Failure 404 {object} response.Body
// @Failure 500 {object} response.Body
// @Router /datasource/test/{id} [get]
func testDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
			return
		}

		okConn, msg, err := svc.TestConnection(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
				return
			}
			logger.FromContext(r.Context()).Error("test data source failed", map[string]any{"id": id, "err": err.Error()})
			response.Error(w, msg)
			return
		}
		if !okConn {
			logger.FromContext(r.Context()).Warn("data source probe failed", map[string]any{"id": id, "msg": msg})
			response.Error(w, msg)
			return
		}
		response.OKWithDataAndMessage(w, true, msg)
	}
}

// createDataSourceHandler godoc
// @Summary Crear data source
// @Description db_password se guarda cifrada (AES-256-GCM).
// @Tags datasources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body CreateInput true "Data source"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 400 {object} response.Body
// @Router /datasource [post]
func createDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in CreateInput
		if err := validation.DecodeJSON(r.Body, createSchema, &in); err != nil {
			writeError(w, r, err, "create data source failed")
			return
		}
		d, err := svc.Create(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "create data source failed")
			return
		}
		response.OKWithData(w, d)
	}
}

// updateDataSourceHandler godoc
// @Summary Actualizar data source
// @Description db_password vacía conserva la credencial guardada.
// @Tags datasources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body UpdateInput true "Data source con data_source_id"
// @Success 200 {object} response.Body{data=DetailView}
// @Failure 400 {object} response.Body
// @Failure 409 {object} response.Body
// @Router /datasource [put]
func updateDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())

		var in UpdateInput
		if err := validation.DecodeJSON(r.Body, updateSchema, &in); err != nil {
			writeError(w, r, err, "update data source failed")
			return
		}
		d, err := svc.Update(r.Context(), in, actor)
		if err != nil {
			writeError(w, r, err, "update data source failed")
			return
		}
		response.OKWithData(w, d)
	}
}

// @Summary Borrado lógico de data source
// @Tags datasources
// @Security BearerAuth
// @Param id path int true "ID del data source"
// @Success 200 {object} response.Body
// @Router /datasource/{id} [delete]
func softDeleteDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
			return
		}
		if err := svc.SoftDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete data source failed")
			return
		}
		response.OK(w)
	}
}

// @Summary Borrado físico de data source
// @Tags datasources
// @Security BearerAuth
// @Param id path int true "ID del data source"
// @Success 200 {object} response.Body
// @Router /datasource/delete/{id} [delete]
func hardDeleteDataSourceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := pathID(r)
		if !ok {
			response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
			return
		}
		if err := svc.HardDelete(r.Context(), id, actor); err != nil {
			writeError(w, r, err, "delete data source failed")
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
		response.ErrorWithCode(w, http.StatusNotFound, "data source not found")
	case errors.Is(err, ErrConflict):
		response.ErrorWithCode(w, http.StatusConflict, "data source was modified concurrently, reload and retry")
	default:
		logger.FromContext(r.Context()).Error(failMsg, map[string]any{"err": err.Error()})
		response.Error(w, failMsg)
	}
}
