package handler

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/exposure_sheet_service/internal/database"
	"github.com/locvowork/exposure_sheet_service/internal/domain"
	"github.com/locvowork/exposure_sheet_service/internal/service/serviceutils"
)

// ResultHandler serves previously processed results from the optional
// persistence backends. Endpoints answer 503 when their backend is not
// configured.
type ResultHandler struct {
	repo     domain.SheetResultRepository
	esClient *database.ElasticSearchClient
	dsClient *database.DatastoreClient
}

func NewResultHandler(repo domain.SheetResultRepository, es *database.ElasticSearchClient, ds *database.DatastoreClient) *ResultHandler {
	return &ResultHandler{repo: repo, esClient: es, dsClient: ds}
}

func (h *ResultHandler) ListHandler(c echo.Context) error {
	if h.repo == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Result storage is not configured", nil)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	results, err := h.repo.List(c.Request().Context(), domain.ResultFilter{
		Workbook: c.QueryParam("workbook"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list results", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Results listed successfully", results)
}

func (h *ResultHandler) GetHandler(c echo.Context) error {
	if h.repo == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Result storage is not configured", nil)
	}

	workbook := c.QueryParam("workbook")
	if workbook == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing query parameter workbook", nil)
	}

	sheet := c.Param("sheet")
	res, err := h.repo.GetBySheet(c.Request().Context(), workbook, sheet)
	if err == sql.ErrNoRows {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Sheet result not found", nil)
	}
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to get result", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Result retrieved successfully", res)
}

func (h *ResultHandler) DeleteHandler(c echo.Context) error {
	if h.repo == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Result storage is not configured", nil)
	}

	workbook := c.QueryParam("workbook")
	if workbook == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing query parameter workbook", nil)
	}

	sheet := c.Param("sheet")
	if err := h.repo.Delete(c.Request().Context(), workbook, sheet); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to delete result", err)
	}

	if h.esClient != nil {
		if err := h.esClient.DeleteSheet(c.Request().Context(), sheet); err != nil {
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to delete indexed entries", err)
		}
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Result deleted successfully", nil)
}

// SearchHandler looks up indexed detail entries by obligor or term text.
func (h *ResultHandler) SearchHandler(c echo.Context) error {
	if h.esClient == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Search is not configured", nil)
	}

	q := c.QueryParam("q")
	if q == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing query parameter q", nil)
	}

	docs, err := h.esClient.SearchByObligor(c.Request().Context(), q)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Search failed", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Search completed successfully", docs)
}

// RunsHandler returns the audit trail of recent processing runs.
func (h *ResultHandler) RunsHandler(c echo.Context) error {
	if h.dsClient == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Run auditing is not configured", nil)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.dsClient.ListProcessingRuns(c.Request().Context(), limit)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list runs", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Runs listed successfully", runs)
}
