package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTableSparse(t *testing.T) {
	table := NewRateTable()
	require.NoError(t, table.Set(30, 9, 0, 1.5))
	require.NoError(t, table.Set(30, 4, 15, 2))
	require.NoError(t, table.Set(-10, 9, 1, 4))

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []int{-10, 30}, table.Thresholds())
	assert.Equal(t, []int{4, 9}, table.Slots(30))
	assert.Nil(t, table.Slots(99))

	sr, ok := table.Slot(30, 9)
	require.True(t, ok)
	assert.False(t, sr.Complete())
	assert.Len(t, sr.Missing(), 15)
	assert.Equal(t, []float64{1.5}, sr.Values())

	_, ok = table.Lookup(30, 9, 1)
	assert.False(t, ok)
	_, ok = table.Slot(30, 5)
	assert.False(t, ok)
	_, ok = table.Slot(30, 12)
	assert.False(t, ok)
}

func TestRateTableSetRejectsOutOfGrid(t *testing.T) {
	table := NewRateTable()
	assert.Error(t, table.Set(10, 3, 0, 1))
	assert.Error(t, table.Set(10, 12, 0, 1))
	assert.Error(t, table.Set(10, 4, 16, 1))
	assert.Error(t, table.Set(10, 4, -1, 1))
	assert.Equal(t, 0, table.Len())
}

func TestRateTableZeroCountIsSet(t *testing.T) {
	table := NewRateTable()
	require.NoError(t, table.Set(10, 4, 3, 0))
	v, ok := table.Lookup(10, 4, 3)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestRateTableCurve(t *testing.T) {
	table := NewRateTable()
	require.NoError(t, table.Set(30, 5, 2, 10))
	require.NoError(t, table.Set(10, 5, 2, 1000))
	require.NoError(t, table.Set(20, 5, 3, 50))
	require.NoError(t, table.Set(20, 5, 2, 100))

	th, counts := table.Curve(5, 2)
	assert.Equal(t, []int{10, 20, 30}, th)
	assert.Equal(t, []float64{1000, 100, 10}, counts)

	th, counts = table.Curve(6, 0)
	assert.Empty(t, th)
	assert.Empty(t, counts)
}
