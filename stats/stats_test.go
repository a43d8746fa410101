package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundStats(t *testing.T) {

	t.Run("Values", func(t *testing.T) {
		b := NewBoundStats()
		b.Update(2, 4)
		b.Update(8, 16)
		require.NoError(t, b.Finalize())

		require.Equal(t, 4, b.Count)
		require.Equal(t, 1.0, b.Min)
		require.Equal(t, 4.0, b.Max)
		require.InDelta(t, 2.5, b.Mean, 1e-12)
		require.InDelta(t, 2.5, b.Median, 1e-12)
		require.InDelta(t, math.Sqrt(1.25), b.Std, 1e-12)
		require.GreaterOrEqual(t, b.P95, b.Median)
		require.LessOrEqual(t, b.P95, b.Max)

		require.Len(t, b.ToCSV(), len(Header))
		require.Equal(t, "1.00000", b.ToCSV()[1])
	})

	t.Run("Empty", func(t *testing.T) {
		require.Error(t, NewBoundStats().Finalize())
	})
}
