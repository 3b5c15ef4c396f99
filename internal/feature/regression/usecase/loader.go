package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"stock_predictor/internal/feature/regression/domain"
	"stock_predictor/internal/feature/regression/domain/entity"
)

const (
	// ColumnTimestamp は日付列のヘッダー名です（大文字小文字を区別）。
	ColumnTimestamp = "timestamp"
	// ColumnClose は終値列のヘッダー名です（大文字小文字を区別）。
	ColumnClose = "close"
)

// SymbolLookup は銘柄コードから企業名を引く参照テーブルのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SymbolLookup interface {
	// Lookup はコードに一致する最初のエントリの企業名を返します。見つからない場合 ok は false です。
	Lookup(ctx context.Context, code string) (name string, ok bool, err error)
}

// SeriesCode はアップロードされたファイル名から拡張子を除いた部分を返します。
func SeriesCode(filename string) string {
	base := filepath.Base(filename)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

// LoadDataset はアップロードされたCSVを検証し、銘柄情報と時系列データを返します。
// 1行でも解釈できない行があればバッチ全体を失敗とします。行の順序はそのまま保持します。
func LoadDataset(ctx context.Context, symbols SymbolLookup, filename string, data []byte) (entity.SeriesIdentity, []entity.TimeSeriesPoint, error) {
	code := SeriesCode(filename)
	name, ok, err := symbols.Lookup(ctx, code)
	if err != nil {
		return entity.SeriesIdentity{}, nil, fmt.Errorf("lookup series %q: %w", code, err)
	}
	if !ok {
		return entity.SeriesIdentity{}, nil, domain.NewError(domain.ErrUnknownSeries, "no matching company found for code: %s", code)
	}
	id := entity.SeriesIdentity{Code: code, Name: name}

	points, err := parseSeries(data)
	if err != nil {
		return entity.SeriesIdentity{}, nil, err
	}
	return id, points, nil
}

func parseSeries(data []byte) ([]entity.TimeSeriesPoint, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewError(domain.ErrSchema, "file is empty; expected %q and %q columns", ColumnTimestamp, ColumnClose)
	}
	if err != nil {
		return nil, domain.NewError(domain.ErrParse, "header: %v", err)
	}

	tsIdx, closeIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case ColumnTimestamp:
			if tsIdx < 0 {
				tsIdx = i
			}
		case ColumnClose:
			if closeIdx < 0 {
				closeIdx = i
			}
		}
	}
	if tsIdx < 0 || closeIdx < 0 {
		return nil, domain.NewError(domain.ErrSchema, "CSV file is invalid; ensure it contains %q and %q columns", ColumnTimestamp, ColumnClose)
	}

	var points []entity.TimeSeriesPoint
	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewError(domain.ErrParse, "row %d: %v", row, err)
		}
		if len(rec) <= tsIdx || len(rec) <= closeIdx {
			return nil, domain.NewError(domain.ErrParse, "row %d: expected at least %d fields, got %d", row, max(tsIdx, closeIdx)+1, len(rec))
		}

		date, err := ParseDate(rec[tsIdx])
		if err != nil {
			return nil, domain.NewError(domain.ErrParse, "row %d: invalid timestamp %q", row, rec[tsIdx])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[closeIdx]), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, domain.NewError(domain.ErrParse, "row %d: invalid close %q", row, rec[closeIdx])
		}
		points = append(points, entity.TimeSeriesPoint{Date: date, Price: price})
	}
	return points, nil
}
