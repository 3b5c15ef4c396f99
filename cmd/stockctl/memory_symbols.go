package main

import (
	"context"

	"stock_predictor/internal/feature/symbollist/domain/entity"
)

// memorySymbols は参照テーブルをメモリに保持します。fit コマンドでDBを使わずに銘柄を引くために使います。
type memorySymbols struct {
	names map[string]string
}

func newMemorySymbols() *memorySymbols {
	return &memorySymbols{names: map[string]string{}}
}

// ImportBatch は既存コードを上書きしません（先勝ち）。
func (m *memorySymbols) ImportBatch(ctx context.Context, symbols []entity.Symbol) (int64, error) {
	var n int64
	for _, s := range symbols {
		if _, ok := m.names[s.Code]; ok {
			continue
		}
		m.names[s.Code] = s.Name
		n++
	}
	return n, nil
}

func (m *memorySymbols) Lookup(ctx context.Context, code string) (string, bool, error) {
	name, ok := m.names[code]
	return name, ok, nil
}
