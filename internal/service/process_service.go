package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
	"github.com/locvowork/exposure_sheet_service/internal/logger"
	"github.com/locvowork/exposure_sheet_service/internal/sheet"
	"github.com/locvowork/exposure_sheet_service/pkg/dataflow"
	"github.com/locvowork/exposure_sheet_service/pkg/sheetio"
)

// ProcessService turns raw workbook bytes into exposure trees and
// re-rendered workbooks. Sheets are independent of each other, so
// processing fans out across a worker pool.
type ProcessService struct {
	styleCfg   sheetio.StyleConfig
	numWorkers int
	repo       domain.SheetResultRepository
	indexer    ResultIndexer
	runs       RunRecorder
}

// ResultIndexer pushes flattened detail entries to a search backend.
// It is optional; a nil indexer disables indexing.
type ResultIndexer interface {
	IndexSheetResult(ctx context.Context, res domain.SheetResult) error
}

// RunRecorder keeps an audit trail of workbook processing runs.
// It is optional; a nil recorder disables auditing.
type RunRecorder interface {
	SaveProcessingRun(ctx context.Context, run *domain.ProcessingRun) error
}

// NewProcessService creates a ProcessService. repo, indexer and runs
// may be nil, in which case results are returned to the caller only.
func NewProcessService(styleCfg sheetio.StyleConfig, numWorkers int, repo domain.SheetResultRepository, indexer ResultIndexer, runs RunRecorder) *ProcessService {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	return &ProcessService{
		styleCfg:   styleCfg,
		numWorkers: numWorkers,
		repo:       repo,
		indexer:    indexer,
		runs:       runs,
	}
}

// ListSheets returns the sheet names of a workbook in workbook order.
func (ps *ProcessService) ListSheets(data []byte) ([]string, error) {
	wb, err := sheetio.OpenWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	return sheetio.SheetNames(wb), nil
}

// ProcessWorkbook processes the named sheets of a workbook. An empty
// sheets slice means every sheet. A sheet that fails to parse yields a
// failed SheetResult; the remaining sheets are unaffected. Results come
// back in the order the sheets were requested. workbook is a caller
// supplied label (usually the uploaded filename) used for auditing.
func (ps *ProcessService) ProcessWorkbook(ctx context.Context, workbook string, data []byte, sheets []string) ([]domain.SheetResult, error) {
	started := time.Now()
	wb, err := sheetio.OpenWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	if len(sheets) == 0 {
		sheets = sheetio.SheetNames(wb)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	names := dataflow.From(ctx, sheets...)
	results := dataflow.Map(ctx, names, func(name string) (domain.SheetResult, error) {
		return ps.processOne(ctx, wb, name), nil
	}, dataflow.WithWorkers(ps.numWorkers), dataflow.WithBufferSize(len(sheets)))

	collected, err := dataflow.Collect(ctx, results)
	if err != nil {
		return nil, err
	}

	// Workers complete out of order; restore the requested order.
	rank := make(map[string]int, len(sheets))
	for i, name := range sheets {
		rank[name] = i
	}
	sort.SliceStable(collected, func(i, j int) bool {
		return rank[collected[i].SheetName] < rank[collected[j].SheetName]
	})

	ps.persist(ctx, workbook, collected)
	ps.recordRun(ctx, workbook, sheets, collected, started)
	return collected, nil
}

// recordRun writes an audit record for one invocation. Best effort.
func (ps *ProcessService) recordRun(ctx context.Context, workbook string, sheets []string, results []domain.SheetResult, started time.Time) {
	if ps.runs == nil {
		return
	}
	run := domain.ProcessingRun{
		Workbook:   workbook,
		Sheets:     sheets,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	for _, res := range results {
		if res.Failed() {
			run.SheetsFailed++
		} else {
			run.SheetsOK++
		}
	}
	if err := ps.runs.SaveProcessingRun(ctx, &run); err != nil {
		logger.ErrorLog(ctx, "failed to record processing run for "+workbook, err)
	}
}

// processOne parses a single sheet into a SheetResult. Parse failures
// are recorded on the result rather than propagated.
func (ps *ProcessService) processOne(ctx context.Context, wb *excelize.File, name string) domain.SheetResult {
	ctx = logger.WithSheet(ctx, name)
	res := domain.SheetResult{SheetName: name}

	grid, err := sheetio.ReadGrid(wb, name)
	if err != nil {
		res.Err = fmt.Errorf("failed to read sheet %q: %w", name, err)
		res.Error = res.Err.Error()
		return res
	}

	tree, warnings, err := sheet.BuildTree(grid)
	if err != nil {
		res.Err = fmt.Errorf("sheet %q: %w", name, err)
		res.Error = res.Err.Error()
		return res
	}

	res.Tree = tree
	res.Warnings = warnings
	for _, w := range warnings {
		logger.WarnLog(ctx, "row %d col %d: %s", w.Row, w.Col, w.Message)
	}
	return res
}

// RenderWorkbook writes the successfully parsed sheets of a result set
// into a styled workbook and returns the xlsx bytes. Failed sheets are
// skipped.
func (ps *ProcessService) RenderWorkbook(results []domain.SheetResult) ([]byte, error) {
	w, err := sheetio.NewWriter(ps.styleCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare writer: %w", err)
	}
	defer w.Close()

	wrote := 0
	for _, res := range results {
		if res.Failed() || res.Tree == nil {
			continue
		}
		rows := sheet.Render(res.Tree)
		if err := w.WriteSheet(res.SheetName, rows); err != nil {
			return nil, fmt.Errorf("failed to write sheet %q: %w", res.SheetName, err)
		}
		wrote++
	}
	if wrote == 0 {
		return nil, fmt.Errorf("no sheet produced output")
	}

	return w.Bytes()
}

// persist stores results in the configured backends. Persistence is
// best effort: failures are logged and do not fail the request.
func (ps *ProcessService) persist(ctx context.Context, workbook string, results []domain.SheetResult) {
	for _, res := range results {
		if res.Failed() {
			continue
		}
		if ps.repo != nil {
			if err := ps.repo.Save(ctx, workbook, &res); err != nil {
				logger.ErrorLog(ctx, "failed to save result for sheet "+res.SheetName, err)
			}
		}
		if ps.indexer != nil {
			if err := ps.indexer.IndexSheetResult(ctx, res); err != nil {
				logger.ErrorLog(ctx, "failed to index result for sheet "+res.SheetName, err)
			}
		}
	}
}
