package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/exposure_sheet_service/internal/service"
	"github.com/locvowork/exposure_sheet_service/internal/service/serviceutils"
)

type WorkbookHandler struct {
	svc *service.ProcessService
}

func NewWorkbookHandler(svc *service.ProcessService) *WorkbookHandler {
	return &WorkbookHandler{svc: svc}
}

// SheetsHandler accepts an uploaded workbook and returns its sheet names.
func (h *WorkbookHandler) SheetsHandler(c echo.Context) error {
	name, data, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid workbook upload", err)
	}

	sheets, err := h.svc.ListSheets(data)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Failed to read workbook", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Sheets listed successfully", SheetListResponse{
		Workbook: name,
		Sheets:   sheets,
	})
}

// ProcessHandler parses the selected sheets of an uploaded workbook and
// returns the exposure trees as JSON. The optional "sheets" form field
// is a comma separated list; absent means every sheet.
func (h *WorkbookHandler) ProcessHandler(c echo.Context) error {
	name, data, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid workbook upload", err)
	}

	results, err := h.svc.ProcessWorkbook(c.Request().Context(), name, data, sheetSelection(c))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Failed to process workbook", err)
	}

	dtos, summary := toSheetResultDTOs(results)
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Workbook processed successfully", ProcessResponse{
		Workbook: name,
		Results:  dtos,
		Summary:  &summary,
	})
}

// FormatHandler parses the selected sheets and streams back a styled
// workbook rendered from the trees.
func (h *WorkbookHandler) FormatHandler(c echo.Context) error {
	name, data, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid workbook upload", err)
	}

	results, err := h.svc.ProcessWorkbook(c.Request().Context(), name, data, sheetSelection(c))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Failed to process workbook", err)
	}

	out, err := h.svc.RenderWorkbook(results)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Failed to render workbook", err)
	}

	filename := strings.TrimSuffix(name, ".xlsx") + "_formatted.xlsx"
	c.Response().Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")

	_, err = c.Response().Write(out)
	return err
}

// readUpload pulls the workbook bytes from the "file" multipart field.
func readUpload(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file field: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func(src multipart.File) { _ = src.Close() }(src)

	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return fh.Filename, data, nil
}

// sheetSelection parses the optional "sheets" form field.
func sheetSelection(c echo.Context) []string {
	raw := c.FormValue("sheets")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	sheets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sheets = append(sheets, p)
		}
	}
	return sheets
}
