// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem is one entry of GET /symbols. The filename stem of an upload must equal Code.
type SymbolItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
