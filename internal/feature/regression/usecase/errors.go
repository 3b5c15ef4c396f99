// Package usecase はアップロードされた株価CSVの回帰分析と価格予測のビジネスロジックを実装します。
package usecase

import "errors"

// ErrModelNotFound is returned by a ModelStore when the session has no saved model.
var ErrModelNotFound = errors.New("model not found")
