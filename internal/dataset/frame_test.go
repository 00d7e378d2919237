package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameColumns(t *testing.T) {
	f := NewFrame([]string{"60601", "60602", "60603"})
	assert.Equal(t, 3, f.NumRows())

	require.NoError(t, f.SetColumn("rent", []float64{1500, 1800, 2100}))
	require.NoError(t, f.SetColumn("income", []float64{60000, 72000, 84000}))

	assert.Equal(t, []string{"rent", "income"}, f.Columns())
	assert.True(t, f.Has("rent"))
	assert.False(t, f.Has("crime"))

	col, ok := f.Column("rent")
	require.True(t, ok)
	assert.Equal(t, []float64{1500, 1800, 2100}, col)

	assert.Equal(t, 1800.0, f.Value("rent", 1))
	assert.True(t, math.IsNaN(f.Value("missing", 0)))
}

func TestFrameSetColumnLengthMismatch(t *testing.T) {
	f := NewFrame([]string{"60601", "60602"})
	err := f.SetColumn("rent", []float64{1500})
	assert.Error(t, err)
}

func TestFrameSetColumnReplaces(t *testing.T) {
	f := NewFrame([]string{"60601"})
	require.NoError(t, f.SetColumn("rent", []float64{1500}))
	require.NoError(t, f.SetColumn("rent", []float64{1600}))

	assert.Equal(t, []string{"rent"}, f.Columns())
	assert.Equal(t, 1600.0, f.Value("rent", 0))
}

func TestFrameSelect(t *testing.T) {
	f := NewFrame([]string{"60601", "60602", "60603"})
	require.NoError(t, f.SetColumn("rent", []float64{1500, 1800, 2100}))

	sub := f.Select([]int{2, 0})
	assert.Equal(t, []string{"60603", "60601"}, sub.Keys())
	assert.Equal(t, 2100.0, sub.Value("rent", 0))
	assert.Equal(t, 1500.0, sub.Value("rent", 1))
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := NewFrame([]string{"60601", "60602"})
	require.NoError(t, f.SetColumn("rent", []float64{1500, 1800}))

	clone := f.Clone()
	require.NoError(t, clone.SetColumn("rent", []float64{0, 0}))

	assert.Equal(t, 1500.0, f.Value("rent", 0))
	assert.Equal(t, 0.0, clone.Value("rent", 0))
}
