package domain

import "context"

// ResultFilter defines criteria for listing stored sheet results
type ResultFilter struct {
	Workbook string
	Limit    int
	Offset   int
}

// SheetResultRepository defines the interface for persisted sheet results
type SheetResultRepository interface {
	Save(ctx context.Context, workbook string, res *SheetResult) error
	GetBySheet(ctx context.Context, workbook, sheetName string) (*SheetResult, error)
	List(ctx context.Context, filter ResultFilter) ([]SheetResult, error)
	Delete(ctx context.Context, workbook, sheetName string) error
}
