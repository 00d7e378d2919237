package dataset

import (
	"fmt"
	"math"
)

// Frame is a column-oriented table of per-zone values. Every row is keyed by
// a zone key (zipcode) and every column holds one float64 per row. Missing
// values are represented as NaN.
//
// A Frame is built once by a pipeline stage and treated as read-only by the
// next stage; stages that add columns do so on a copy.
type Frame struct {
	keys  []string
	order []string
	cols  map[string][]float64
}

// NewFrame creates an empty frame with the given zone keys
func NewFrame(keys []string) *Frame {
	k := make([]string, len(keys))
	copy(k, keys)
	return &Frame{
		keys: k,
		cols: make(map[string][]float64),
	}
}

// NumRows returns the number of zones in the frame
func (f *Frame) NumRows() int {
	return len(f.keys)
}

// Keys returns the zone keys in row order
func (f *Frame) Keys() []string {
	return f.keys
}

// Key returns the zone key for a row
func (f *Frame) Key(row int) string {
	return f.keys[row]
}

// Columns returns column names in insertion order
func (f *Frame) Columns() []string {
	return f.order
}

// Has reports whether the frame contains the named column
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the values of the named column in row order
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// Value returns a single cell; NaN when the column does not exist
func (f *Frame) Value(name string, row int) float64 {
	col, ok := f.cols[name]
	if !ok {
		return math.NaN()
	}
	return col[row]
}

// SetColumn adds or replaces a column. The value count must match the number
// of rows.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.keys) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(f.keys))
	}
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	v := make([]float64, len(values))
	copy(v, values)
	f.cols[name] = v
	return nil
}

// Select returns a new frame containing only the given rows, in the given
// order. Used by the inner join to drop zones absent from one source.
func (f *Frame) Select(rows []int) *Frame {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = f.keys[r]
	}
	out := NewFrame(keys)
	for _, name := range f.order {
		src := f.cols[name]
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = src[r]
		}
		out.order = append(out.order, name)
		out.cols[name] = values
	}
	return out
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	rows := make([]int, len(f.keys))
	for i := range rows {
		rows[i] = i
	}
	return f.Select(rows)
}
