package paramsets

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/pipeline"
)

var epsilon = 1e-9

func newEstimator(t *testing.T) *estimator.Estimator {
	est, err := estimator.NewEstimator(estimator.DefaultConfig(), nil)
	require.NoError(t, err)
	return est
}

func TestTables(t *testing.T) {

	require.Len(t, Standard, 34)
	require.Len(t, Small, 16)
	require.Len(t, Tiny, 3)
	require.Len(t, All(), 34+16+3)

	names := map[string]bool{}
	for _, s := range All() {
		require.False(t, names[s.Name], s.Name)
		names[s.Name] = true
		require.GreaterOrEqual(t, s.T, 8, s.Name)
	}

	for _, s := range CKKS {
		require.False(t, names[s.Name], s.Name)
		names[s.Name] = true
	}
}

func TestEvaluate(t *testing.T) {

	est := newEstimator(t)

	t.Run("All", func(t *testing.T) {
		for _, s := range All() {
			r, err := s.Evaluate(est)
			require.NoError(t, err, s.Name)
			require.Equal(t, s.Pipeline.Kind(), r.Kind)
			require.Positive(t, r.Core, s.Name)
			require.Positive(t, r.Tail, s.Name)
			require.InEpsilon(t, math.Sqrt(r.Core+r.Tail), r.Std, 1e-12, s.Name)
			require.InEpsilon(t, est.NormBound*r.Std, r.Bound, 1e-12, s.Name)

			total, err := pipeline.TotalVar(est, s.Pipeline)
			require.NoError(t, err)
			require.InEpsilon(t, total, r.Core+r.Tail, 1e-12, s.Name)
		}
	})

	testCases := []struct {
		name string
		kind pipeline.Kind
		core float64
	}{
		{"standard/KS21/p32/Bg18", pipeline.KS21, 15.012202149121475},
		{"standard/WoPPBS2/p32", pipeline.WoPPBSOld, 5.537155545497535},
		{"standard/WoPPBS2-MV/p32", pipeline.WoPPBSMVOld, 9.922172571539491},
		{"standard/BFVMul/p32", pipeline.WoPPBS, 0.5813812972886815},
		{"standard/PreSelect/p32", pipeline.PreSelect, 27.105051494081625},
		{"standard/CancelSign/p16", pipeline.CancelSign, 0.47944804043337796},
		{"standard/Select/p32", pipeline.Select, 3.8355843234670237},
		{"standard/Select-MV/p32", pipeline.SelectMV, 3.5841690723070734},
		{"standard/SelectAlt/p32", pipeline.SelectAlt, 2.333929063600713},
		{"standard/Comp/p32", pipeline.Comp, 0.27742460124480095},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Lookup(tc.name)
			require.NoError(t, err)

			r, err := s.Evaluate(est)
			require.NoError(t, err)
			require.Equal(t, tc.kind, r.Kind)
			require.InEpsilon(t, tc.core, r.Core, epsilon)

			if s.Pipeline.Params().Qin == 1<<12 {
				require.InEpsilon(t, 75.76064006618924, r.Tail, 1e-6)
			}
		})
	}

	t.Run("EvalFunc", func(t *testing.T) {
		s, err := Lookup("standard/EvalFunc/p8")
		require.NoError(t, err)

		r, err := s.Evaluate(est)
		require.NoError(t, err)
		require.InEpsilon(t, 77.55737411216981, math.Sqrt2*r.Bound, epsilon)
	})

	t.Run("Error", func(t *testing.T) {
		s := Standard[0]
		c := s.Pipeline.Params()
		c.RingDim = 0
		s.Pipeline = pipeline.PlainBootstrap{Common: c}

		_, err := s.Evaluate(est)
		require.ErrorIs(t, err, estimator.ErrInvalidDimension)
		require.Contains(t, err.Error(), s.Name)
	})
}

func TestLookup(t *testing.T) {

	s, err := Lookup("tiny/SelectAlt/p16")
	require.NoError(t, err)
	require.Equal(t, pipeline.SelectAlt, s.Pipeline.Kind())
	require.Equal(t, 16, s.T)

	_, err = Lookup("standard/Magic/p64")
	require.ErrorIs(t, err, ErrUnknownSet)

	_, err = LookupCKKS("ckks/Magic")
	require.ErrorIs(t, err, ErrUnknownSet)
}

func TestCKKS(t *testing.T) {

	est := newEstimator(t)

	testCases := []struct {
		name            string
		pipeline, total float64
	}{
		{"ckks/EvalFunc", 0.06747711075421818, 0.09540745033903507},
		{"ckks/Compress", 0.07572334991810163, 0.08289653735864799},
		{"ckks/Comp", 0.035715971195383084, 0.04912678273267946},
		{"ckks/Comp-special", 0.035714119225748256, 0.04912543633704865},
		{"ckks/CancelSign/sigmoid", 0.00036568310940075116, 0.016866313858254624},
		{"ckks/Select/sigmoid", 0.0005157636212819934, 0.008448618145305868},
		{"ckks/SelectAlt/sigmoid", 0.0007284114303884994, 0.008464261318276644},
		{"ckks/PreSelect/sigmoid", 0.04784987191831585, 0.04858727589659031},
		{"ckks/ReLU", 0.0014548476780203168, 0.001650189339890779},
	}

	require.Len(t, CKKS, len(testCases))

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := LookupCKKS(tc.name)
			require.NoError(t, err)

			std, err := s.Evaluate(est)
			require.NoError(t, err)
			require.InEpsilon(t, tc.pipeline, std.Pipeline, epsilon)
			require.InEpsilon(t, tc.total, std.Total, epsilon)
		})
	}
}
