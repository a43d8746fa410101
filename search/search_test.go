package search

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

func newEstimator(t *testing.T) *estimator.Estimator {
	est, err := estimator.NewEstimator(estimator.DefaultConfig(), nil)
	require.NoError(t, err)
	return est
}

var grid = Grid{
	Qin:       1 << 11,
	LWEDim:    1305,
	RingDim:   1 << 10,
	Q:         1<<27 - 1,
	MaxLogQKS: 35,
}

func TestGrid(t *testing.T) {

	est := newEstimator(t)

	bands, err := grid.Run(est)
	require.NoError(t, err)

	t.Run("Enumeration", func(t *testing.T) {
		require.Len(t, bands, 294)

		var count int
		for _, b := range bands {
			require.Len(t, b.Results, 14)
			count += len(b.Results)
		}
		require.Equal(t, 4116, count)

		require.Equal(t, 11, bands[0].LogQKS)
		require.Equal(t, 1, bands[0].LogBaseKS)
		require.Equal(t, 35, bands[len(bands)-1].LogQKS)
		require.Equal(t, 18, bands[len(bands)-1].LogBaseKS)
	})

	t.Run("Std", func(t *testing.T) {
		var found bool
		for _, b := range bands {
			if b.LogQKS != 20 || b.LogBaseKS != 4 {
				continue
			}

			r := b.Results[6]
			require.Equal(t, 7, r.LogBaseG)
			require.InEpsilon(t, 14.52931399530009, r.Std, 1e-9)
			require.InEpsilon(t, est.NormBound*r.Std, r.Bound, 1e-12)
			require.True(t, r.Pass)

			bt, err := est.BootstrapStd(grid.Qin, grid.LWEDim, grid.Q, grid.RingDim, 1<<7, 1<<20, 1<<4)
			require.NoError(t, err)
			require.InEpsilon(t, bt, r.Std, 1e-12)

			found = true
		}
		require.True(t, found)
	})

	t.Run("Fastest", func(t *testing.T) {
		best, ok := Fastest(bands)
		require.True(t, ok)
		require.Equal(t, 14, best.LogBaseG)
		require.Equal(t, 11, best.LogQKS)
		require.Equal(t, 1, best.LogBaseKS)
	})

	t.Run("Target", func(t *testing.T) {
		g := grid
		g.Target = 100

		bands, err := g.Run(est)
		require.NoError(t, err)

		var pass, fail int
		for _, b := range bands {
			for _, r := range b.Results {
				require.Equal(t, r.Bound <= 100, r.Pass)
				if r.Pass {
					pass++
				} else {
					fail++
				}
			}
		}
		require.Positive(t, pass)
		require.Positive(t, fail)

		best, ok := Fastest(bands)
		require.True(t, ok)
		require.True(t, best.Pass)

		g.Target = 1e-3
		bands, err = g.Run(est)
		require.NoError(t, err)
		_, ok = Fastest(bands)
		require.False(t, ok)
	})

	t.Run("Invalid", func(t *testing.T) {
		g := grid
		g.Q = 0
		_, err := g.Run(est)
		require.ErrorIs(t, err, estimator.ErrInvalidModulus)

		g = grid
		g.LWEDim = 0
		_, err = g.Run(est)
		require.ErrorIs(t, err, estimator.ErrInvalidDimension)

		// No key switching modulus above Qin.
		g = grid
		g.MaxLogQKS = 10
		_, err = g.Run(est)
		require.ErrorIs(t, err, estimator.ErrInvalidModulus)

		g.MaxLogQKS = 11
		bands, err := g.Run(est)
		require.NoError(t, err)
		require.NotEmpty(t, bands)
	})

	t.Run("CSV", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, bands[:2]))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1+2*14)
		require.Equal(t, Header, records[0])
		require.Equal(t, []string{"1", "11", "1"}, records[1][:3])
	})
}

func TestExplore(t *testing.T) {

	est := newEstimator(t)

	want := map[string]Exploration{
		"HomFloor":         {Steps: []Step{{17, 18}, {26, 14}}, Stop: 30},
		"HomFloorAlt":      {Steps: []Step{{20, 18}, {28, 14}}, Stop: 32},
		"HomDecomp-Reduce": {Steps: []Step{{20, 18}, {29, 14}}, Stop: 33},
		"HomDecomp-FDFB":   {Steps: []Step{{21, 18}, {30, 14}}, Stop: 34},
	}

	for _, loop := range Loops() {
		t.Run(loop.Name, func(t *testing.T) {
			e, err := Explore(est, Setting.Start, Setting.Bases, loop.Infeasible)
			require.NoError(t, err)
			if diff := cmp.Diff(want[loop.Name], e); diff != "" {
				t.Fatalf("exploration mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("SkipSeveralBases", func(t *testing.T) {
		criterion := func(est *estimator.Estimator, logQ int, Bg uint64) (bool, error) {
			return logQ >= 15 && Bg > 1<<14 || logQ >= 20, nil
		}

		e, err := Explore(est, 13, Setting.Bases, criterion)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(Exploration{Steps: []Step{{15, 14}}, Stop: 20}, e))
	})

	t.Run("NoStop", func(t *testing.T) {
		never := func(*estimator.Estimator, int, uint64) (bool, error) { return false, nil }
		_, err := Explore(est, 13, Setting.Bases, never)
		require.ErrorIs(t, err, ErrNoStop)
	})

	t.Run("NoBase", func(t *testing.T) {
		_, err := Explore(est, 13, nil, HomFloor)
		require.ErrorIs(t, err, estimator.ErrInvalidBase)
	})

	t.Run("Error", func(t *testing.T) {
		errCriterion := errors.New("criterion")
		failing := func(*estimator.Estimator, int, uint64) (bool, error) { return false, errCriterion }
		_, err := Explore(est, 13, Setting.Bases, failing)
		require.ErrorIs(t, err, errCriterion)
	})
}
