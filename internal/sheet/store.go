// Package sheet is the tabular store used by the route pipeline. Rows are
// read once at run start and all updates are committed in a single bulk
// write, each update addressed by its own A1 range.
package sheet

import "context"

// RowUpdate is one row's output: the A1 range of its output block and the
// values to place there, in column order. Never mutated after creation.
type RowUpdate struct {
	Range  string
	Values []string
}

// Store abstracts the spreadsheet backend. BatchUpdate issues exactly one
// bulk write for the whole slice and reports how many rows were applied;
// an empty slice is a no-op success.
type Store interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
	BatchUpdate(ctx context.Context, updates []RowUpdate) (int, error)
}
