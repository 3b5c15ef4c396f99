package usecase

import "errors"

var (
	// ErrSymbolNotFound is returned when no reference entry matches a code.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrImportSchema is returned when the reference CSV lacks the Code or Name column.
	ErrImportSchema = errors.New("reference file must have Code and Name columns")
)
