package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

type sheetResultRepository struct {
	db *sql.DB
}

// NewSheetResultRepository creates a new instance of SheetResultRepository
func NewSheetResultRepository(db *sql.DB) domain.SheetResultRepository {
	return &sheetResultRepository{db: db}
}

func (r *sheetResultRepository) Save(ctx context.Context, workbook string, res *domain.SheetResult) error {
	tree, err := json.Marshal(res.Tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	warnings, err := json.Marshal(res.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO sheet_results (workbook, sheet_name, tree, warnings, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (workbook, sheet_name) DO UPDATE
		SET tree = EXCLUDED.tree, warnings = EXCLUDED.warnings, created_at = NOW()`

	_, err = r.db.ExecContext(ctx, query, workbook, res.SheetName, tree, warnings)
	return err
}

func (r *sheetResultRepository) GetBySheet(ctx context.Context, workbook, sheetName string) (*domain.SheetResult, error) {
	query := `SELECT sheet_name, tree, warnings FROM sheet_results WHERE workbook = $1 AND sheet_name = $2`

	res, err := scanResult(r.db.QueryRowContext(ctx, query, workbook, sheetName))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *sheetResultRepository) List(ctx context.Context, filter domain.ResultFilter) ([]domain.SheetResult, error) {
	query := `SELECT sheet_name, tree, warnings FROM sheet_results`
	args := []interface{}{}

	if filter.Workbook != "" {
		args = append(args, filter.Workbook)
		query += fmt.Sprintf(" WHERE workbook = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SheetResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

func (r *sheetResultRepository) Delete(ctx context.Context, workbook, sheetName string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sheet_results WHERE workbook = $1 AND sheet_name = $2`, workbook, sheetName)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*domain.SheetResult, error) {
	var res domain.SheetResult
	var tree, warnings []byte
	if err := row.Scan(&res.SheetName, &tree, &warnings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tree, &res.Tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &res.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return &res, nil
}
