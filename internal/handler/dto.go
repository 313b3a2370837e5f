package handler

import (
	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

// SheetListResponse lists the sheets found in an uploaded workbook.
type SheetListResponse struct {
	Workbook string   `json:"workbook"`
	Sheets   []string `json:"sheets"`
}

// ProcessResponse carries the parsed trees of one workbook run.
type ProcessResponse struct {
	Workbook string             `json:"workbook"`
	Results  []SheetResultDTO   `json:"results"`
	Summary  *ProcessRunSummary `json:"summary,omitempty"`
}

// SheetResultDTO is the wire form of one processed sheet.
type SheetResultDTO struct {
	SheetName string           `json:"sheetName"`
	Tree      *domain.Category `json:"tree,omitempty"`
	Warnings  []domain.Warning `json:"warnings,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ProcessRunSummary totals one run.
type ProcessRunSummary struct {
	SheetsOK     int `json:"sheetsOk"`
	SheetsFailed int `json:"sheetsFailed"`
}

func toSheetResultDTOs(results []domain.SheetResult) ([]SheetResultDTO, ProcessRunSummary) {
	dtos := make([]SheetResultDTO, 0, len(results))
	var summary ProcessRunSummary
	for _, res := range results {
		dto := SheetResultDTO{
			SheetName: res.SheetName,
			Tree:      res.Tree,
			Warnings:  res.Warnings,
			Error:     res.Error,
		}
		if res.Failed() {
			summary.SheetsFailed++
		} else {
			summary.SheetsOK++
		}
		dtos = append(dtos, dto)
	}
	return dtos, summary
}
