// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_predictor/internal/feature/symbollist/domain/entity"
	"stock_predictor/internal/feature/symbollist/usecase"
)

// importBatchSize は一括INSERT時の1バッチあたりの件数です。
const importBatchSize = 500

// symbolSQL はSymbolRepositoryインターフェースのgorm実装です（PostgreSQL / SQLite）。
type symbolSQL struct {
	db *gorm.DB
}

var (
	_ usecase.SymbolRepository = (*symbolSQL)(nil)
	_ usecase.SymbolImporter   = (*symbolSQL)(nil)
)

// NewSymbolRepository は指定されたDB接続でsymbolSQLリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolSQL {
	return &symbolSQL{db: db}
}

// ListAll はsort_key順にすべての銘柄を返します。
func (r *symbolSQL) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Order("sort_key ASC").
		Order("id ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindByCode はコードに完全一致（大文字小文字を区別）する最初の銘柄を返します。
func (r *symbolSQL) FindByCode(ctx context.Context, code string) (*entity.Symbol, error) {
	var s entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("sort_key ASC").
		Order("id ASC").
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSymbolNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ImportBatch は銘柄を一括登録します。既存のコードは上書きせずスキップします（先勝ち）。
// 実際に登録された件数を返します。
func (r *symbolSQL) ImportBatch(ctx context.Context, symbols []entity.Symbol) (int64, error) {
	if len(symbols) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		CreateInBatches(&symbols, importBatchSize)
	return result.RowsAffected, result.Error
}
