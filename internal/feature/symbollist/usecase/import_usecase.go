package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"stock_predictor/internal/feature/symbollist/domain/entity"
)

const (
	// ColumnCode is the header of the code column in the reference CSV.
	ColumnCode = "Code"
	// ColumnName is the header of the company name column in the reference CSV.
	ColumnName = "Name"
)

// SymbolImporter writes reference entries, skipping codes that already exist.
type SymbolImporter interface {
	ImportBatch(ctx context.Context, symbols []entity.Symbol) (int64, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Read       int   // data rows read from the file
	Duplicates int   // rows dropped because the code appeared earlier in the same file
	Blank      int   // rows dropped because the code was empty
	Inserted   int64 // rows actually written
}

// ImportUsecase loads the company reference table from a CSV file.
type ImportUsecase struct {
	repo SymbolImporter
}

// NewImportUsecase creates a new ImportUsecase.
func NewImportUsecase(repo SymbolImporter) *ImportUsecase {
	return &ImportUsecase{repo: repo}
}

// Import reads a CSV with Code and Name columns and stores its rows.
// When a code repeats, the first row wins, both within the file and against existing rows.
func (u *ImportUsecase) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	symbols, res, err := readReference(r)
	if err != nil {
		return nil, err
	}

	inserted, err := u.repo.ImportBatch(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("import symbols: %w", err)
	}
	res.Inserted = inserted

	slog.Info("reference table imported",
		"read", res.Read, "inserted", res.Inserted, "duplicates", res.Duplicates, "blank", res.Blank)
	return res, nil
}

func readReference(r io.Reader) ([]entity.Symbol, *ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrImportSchema
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	codeIdx, nameIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case h == ColumnCode && codeIdx < 0:
			codeIdx = i
		case h == ColumnName && nameIdx < 0:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, nil, ErrImportSchema
	}

	res := &ImportResult{}
	seen := make(map[string]struct{})
	var symbols []entity.Symbol
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", line, err)
		}
		res.Read++

		if codeIdx >= len(rec) || nameIdx >= len(rec) {
			return nil, nil, fmt.Errorf("row %d: expected at least %d fields, got %d", line, max(codeIdx, nameIdx)+1, len(rec))
		}
		code := strings.TrimSpace(rec[codeIdx])
		if code == "" {
			res.Blank++
			continue
		}
		if _, dup := seen[code]; dup {
			res.Duplicates++
			continue
		}
		seen[code] = struct{}{}

		symbols = append(symbols, entity.Symbol{
			Code:    code,
			Name:    strings.TrimSpace(rec[nameIdx]),
			SortKey: line,
		})
	}
	return symbols, res, nil
}
