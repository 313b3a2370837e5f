package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
	"github.com/locvowork/exposure_sheet_service/pkg/sheetio"
)

// buildWorkbook assembles an in-memory xlsx with one grid per sheet.
func buildWorkbook(t *testing.T, sheets map[string][][]string, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, val := range row {
				if val == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, val))
			}
		}
	}

	buf := new(bytes.Buffer)
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func goodGrid(category, group string) [][]string {
	return [][]string{
		{category},
		{"Name/Term", "LGD", "% RR Used", "% AGG Used", "Used", "Available", "Total Exposure", "% TE of RR", "% TE of AGG"},
		{group},
		{"5yr term", "AA", "62.5", "30.1", "1250000", "750000", "2000000", "12.5", "8.3"},
	}
}

func badGrid() [][]string {
	return [][]string{
		{"High Quality"},
		{"ACME Corp"},
		{"5yr term", "AA", "62.5"},
		{"Low Quality"},
	}
}

func newTestService(repo domain.SheetResultRepository, indexer ResultIndexer, runs RunRecorder) *ProcessService {
	return NewProcessService(sheetio.DefaultStyleConfig(), 4, repo, indexer, runs)
}

func TestProcessService_ListSheets(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Q1": goodGrid("High Quality", "ACME Corp"),
		"Q2": goodGrid("Low Quality", "Globex Inc"),
	}, []string{"Q1", "Q2"})

	svc := newTestService(nil, nil, nil)

	sheets, err := svc.ListSheets(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, sheets)
}

func TestProcessService_ListSheets_BadBytes(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.ListSheets([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestProcessService_ProcessWorkbook_AllSheets(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Q1": goodGrid("High Quality", "ACME Corp"),
		"Q2": goodGrid("Medium Quality", "Globex Inc"),
		"Q3": goodGrid("Low Quality", "Initech LLC"),
	}, []string{"Q1", "Q2", "Q3"})

	svc := newTestService(nil, nil, nil)

	results, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Workers may finish in any order; output keeps workbook order.
	assert.Equal(t, "Q1", results[0].SheetName)
	assert.Equal(t, "Q2", results[1].SheetName)
	assert.Equal(t, "Q3", results[2].SheetName)

	for _, res := range results {
		assert.False(t, res.Failed())
		require.NotNil(t, res.Tree)
		require.Len(t, res.Tree.Groups, 1)
	}
	assert.Equal(t, "High Quality", results[0].Tree.Label)
	assert.Equal(t, "Initech LLC", results[2].Tree.Groups[0].Name)
}

func TestProcessService_ProcessWorkbook_Selection(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Q1": goodGrid("High Quality", "ACME Corp"),
		"Q2": goodGrid("Medium Quality", "Globex Inc"),
	}, []string{"Q1", "Q2"})

	svc := newTestService(nil, nil, nil)

	results, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, []string{"Q2"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Q2", results[0].SheetName)
}

func TestProcessService_FailedSheetDoesNotAffectOthers(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Good": goodGrid("High Quality", "ACME Corp"),
		"Bad":  badGrid(),
	}, []string{"Good", "Bad"})

	svc := newTestService(nil, nil, nil)

	results, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Contains(t, results[1].Error, "duplicate category")
	assert.Nil(t, results[1].Tree)
}

func TestProcessService_MissingSheetFails(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Q1": goodGrid("High Quality", "ACME Corp"),
	}, []string{"Q1"})

	svc := newTestService(nil, nil, nil)

	results, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, []string{"Nope"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
}

func TestProcessService_RenderWorkbook(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Good": goodGrid("High Quality", "ACME Corp"),
		"Bad":  badGrid(),
	}, []string{"Good", "Bad"})

	svc := newTestService(nil, nil, nil)

	results, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, nil)
	require.NoError(t, err)

	out, err := svc.RenderWorkbook(results)
	require.NoError(t, err)

	f, err := sheetio.OpenWorkbook(out)
	require.NoError(t, err)
	defer f.Close()

	// Failed sheets are left out of the rendered workbook.
	assert.Equal(t, []string{"Good"}, sheetio.SheetNames(f))

	v, err := f.GetCellValue("Good", "A1")
	require.NoError(t, err)
	assert.Equal(t, "High Quality", v)
	v, err = f.GetCellValue("Good", "A3")
	require.NoError(t, err)
	assert.Equal(t, "ACME Corp", v)
}

func TestProcessService_RenderWorkbook_NothingToWrite(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.RenderWorkbook([]domain.SheetResult{{SheetName: "Bad", Error: "broken"}})
	assert.Error(t, err)
}

// ==================== persistence fakes ====================

type fakeRepo struct {
	mu    sync.Mutex
	saved []string
}

func (f *fakeRepo) Save(ctx context.Context, workbook string, res *domain.SheetResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, workbook+"/"+res.SheetName)
	return nil
}

func (f *fakeRepo) GetBySheet(ctx context.Context, workbook, sheetName string) (*domain.SheetResult, error) {
	return nil, nil
}

func (f *fakeRepo) List(ctx context.Context, filter domain.ResultFilter) ([]domain.SheetResult, error) {
	return nil, nil
}

func (f *fakeRepo) Delete(ctx context.Context, workbook, sheetName string) error { return nil }

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
}

func (f *fakeIndexer) IndexSheetResult(ctx context.Context, res domain.SheetResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, res.SheetName)
	return nil
}

type fakeRecorder struct {
	runs []domain.ProcessingRun
}

func (f *fakeRecorder) SaveProcessingRun(ctx context.Context, run *domain.ProcessingRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func TestProcessService_PersistsSuccessfulSheetsOnly(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"Good": goodGrid("High Quality", "ACME Corp"),
		"Bad":  badGrid(),
	}, []string{"Good", "Bad"})

	repo := &fakeRepo{}
	indexer := &fakeIndexer{}
	recorder := &fakeRecorder{}
	svc := newTestService(repo, indexer, recorder)

	_, err := svc.ProcessWorkbook(context.Background(), "book.xlsx", data, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"book.xlsx/Good"}, repo.saved)
	assert.Equal(t, []string{"Good"}, indexer.indexed)

	require.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, "book.xlsx", run.Workbook)
	assert.Equal(t, 1, run.SheetsOK)
	assert.Equal(t, 1, run.SheetsFailed)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}
