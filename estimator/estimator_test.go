package estimator

import (
	"bytes"
	"math"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

var epsilon = 1e-9

func TestDigits(t *testing.T) {

	t.Run("PowersOfTwo", func(t *testing.T) {
		for k := 1; k < 64; k++ {
			d, err := Digits(1<<k, 2)
			require.NoError(t, err)
			require.Equal(t, k, d)
		}
	})

	t.Run("Values", func(t *testing.T) {
		for _, tc := range []struct {
			M, B uint64
			d    int
		}{
			{Q53, 1 << 27, 2},
			{Q53, 1 << 18, 3},
			{Q53, 1 << 11, 5},
			{1<<27 - 1, 1 << 5, 6},
			{1 << 20, 1 << 5, 4},
			{64, 64, 1},
			{1, 2, 1},
			{math.MaxUint64, 1 << 32, 2},
			{math.MaxUint64, 3, 41},
		} {
			d, err := Digits(tc.M, tc.B)
			require.NoError(t, err)
			require.Equal(t, tc.d, d, "M=%d B=%d", tc.M, tc.B)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Digits(1<<20, 1)
		require.ErrorIs(t, err, ErrInvalidBase)
		_, err = Digits(0, 2)
		require.ErrorIs(t, err, ErrInvalidModulus)
	})
}

func TestLog2(t *testing.T) {
	require.Equal(t, 27, CeilLog2(1<<27-1))
	require.Equal(t, 26, FloorLog2(1<<27-1))
	require.Equal(t, 11, CeilLog2(1<<11))
	require.Equal(t, 11, FloorLog2(1<<11))
	require.True(t, IsPowerOfTwo(1<<11))
	require.False(t, IsPowerOfTwo(0))
	require.False(t, IsPowerOfTwo(uint64(Q53)))
	require.Equal(t, 11.0, Log2(2048))
}

func TestPrimitives(t *testing.T) {

	std := DefaultConfig().EncStd

	t.Run("ACC", func(t *testing.T) {
		v, err := VarACC(1305, 1<<10, 1<<27-1, 1<<5, std)
		require.NoError(t, err)
		require.InEpsilon(t, 55699562299.392, v, epsilon)

		v, err = TimeACC(1305, 1<<10, 1<<27-1, 1<<5)
		require.NoError(t, err)
		require.InEpsilon(t, 259354603.2912425, v, epsilon)

		v, err = MemACC(1305, 1<<10, 1<<27-1, 1<<5)
		require.NoError(t, err)
		require.InEpsilon(t, 1731870719.3105283, v, epsilon)
	})

	t.Run("ACC/Monotonic", func(t *testing.T) {
		base, err := VarACC(1000, 1<<10, Q53, 1<<10, std)
		require.NoError(t, err)

		for _, f := range []func() (float64, error){
			func() (float64, error) { return VarACC(1001, 1<<10, Q53, 1<<10, std) },
			func() (float64, error) { return VarACC(1000, 1<<11, Q53, 1<<10, std) },
			func() (float64, error) { return VarACC(1000, 1<<10, Q53, 1<<10, std+1) },
		} {
			v, err := f()
			require.NoError(t, err)
			require.Greater(t, v, base)
		}
	})

	t.Run("KS", func(t *testing.T) {
		v, err := VarKS(2048, 1<<20, 1<<5, std)
		require.NoError(t, err)
		require.InEpsilon(t, 80757.5296, v, epsilon)

		v, err = VarKSMult(1<<16, 1<<35, 1<<12, std)
		require.NoError(t, err)
		require.InEpsilon(t, 2797185068852.8384, v, epsilon)

		v, err = TimeKS(1340, 2048, 1<<20, 1<<5)
		require.NoError(t, err)
		require.Equal(t, 10985472.0, v)

		v, err = MemKS(1340, 2048, 1<<20, 1<<5)
		require.NoError(t, err)
		require.InEpsilon(t, 6810992640.0, v, epsilon)

		v, err = MemKSMult(1340, 1<<16, 1<<35, 1<<12)
		require.NoError(t, err)
		require.InEpsilon(t, 9227796480.0, v, epsilon)
	})

	t.Run("MS", func(t *testing.T) {
		for _, tc := range []struct {
			from, to uint64
			dim      int
			want     float64
		}{
			{1 << 30, 1 << 26, 1340, 74.23665364583334},
			{1<<27 - 1, 1 << 20, 1024, 56.972222222222214},
			{Q53, 1 << 20, 2048, 113.8611111111111},
		} {
			v, err := VarMS(tc.from, tc.to, tc.dim)
			require.NoError(t, err)
			require.InEpsilon(t, tc.want, v, epsilon)
		}

		v, err := VarMS(1<<20, 1<<20, 1340)
		require.NoError(t, err)
		require.Zero(t, v)

		// Switching to a divisor loses nothing.
		v, err = VarMS(1<<12, 1<<20, 1340)
		require.NoError(t, err)
		require.Zero(t, v)
	})

	t.Run("PK", func(t *testing.T) {
		v, err := VarPKScaled(2048, 1<<30, Q53, 1<<5, std)
		require.NoError(t, err)
		require.InEpsilon(t, 122128.29440000001, v, epsilon)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := VarACC(0, 1<<10, Q53, 1<<10, std)
		require.ErrorIs(t, err, ErrInvalidDimension)
		_, err = VarACC(1000, 1<<10, Q53, 1, std)
		require.ErrorIs(t, err, ErrInvalidBase)
		_, err = VarKS(-1, 1<<20, 1<<5, std)
		require.ErrorIs(t, err, ErrInvalidDimension)
		_, err = VarMS(0, 1<<20, 1024)
		require.ErrorIs(t, err, ErrInvalidModulus)
		_, err = VarPKScaled(2048, 1<<30, 0, 1<<5, std)
		require.ErrorIs(t, err, ErrInvalidModulus)
	})
}

func TestEstimator(t *testing.T) {

	rec := &Recorder{}

	est, err := NewEstimator(DefaultConfig(), rec)
	require.NoError(t, err)

	t.Run("Config", func(t *testing.T) {
		_, err := NewEstimator(Config{EncStd: 0, NormBound: 6}, nil)
		require.Error(t, err)
		_, err = NewEstimator(Config{EncStd: 3.19, NormBound: math.Inf(1)}, nil)
		require.Error(t, err)
		require.InDelta(t, -32, est.LogFailureProbability(), 1e-2)
		require.Equal(t, 2*6.338, est.Bound(2))
	})

	t.Run("BootstrapStd", func(t *testing.T) {
		rec.Reset()

		std, err := est.BootstrapStd(1<<11, N35, Q53, 1<<11, 1<<27, 1<<20, 1<<5)
		require.NoError(t, err)
		require.InEpsilon(t, 77.55737411216981, math.Sqrt2*std*est.NormBound, epsilon)

		e, ok := rec.Find("bootstrap")
		require.True(t, ok)
		require.Len(t, e.Terms, 3)
		require.InEpsilon(t, std*std, e.Total(), epsilon)
	})

	t.Run("BootstrapStd/Grid", func(t *testing.T) {
		std, err := est.BootstrapStd(1<<11, 1305, 1<<27-1, 1<<10, 1<<7, 1<<20, 1<<4)
		require.NoError(t, err)
		require.InEpsilon(t, 14.52931399530009, std, epsilon)
	})

	t.Run("CommonPartVar", func(t *testing.T) {
		v, err := est.CommonPartVar(1<<12, N35, Q53, 1<<11, 1<<20, 1<<5)
		require.NoError(t, err)
		require.InEpsilon(t, 75.76064006618924, v, epsilon)

		// The two modulus switches do not commute.
		m := est.Model()
		swapped := m.MS(1<<20, 1<<12, N35)*Sq(Ratio(1<<12, 1<<20)) + m.MS(Q53, 1<<20, 1<<11) + m.KS(1<<11, 1<<20, 1<<5)
		require.NoError(t, m.Err())
		require.NotEqual(t, v, swapped)
	})

	t.Run("StickyError", func(t *testing.T) {
		rec.Reset()

		m := est.Model()
		require.Zero(t, m.ACC(N35, 1<<11, Q53, 1))
		require.ErrorIs(t, m.Err(), ErrInvalidBase)

		// Later calls are no-ops and keep the first error.
		require.Zero(t, m.MS(0, 1<<20, 1))
		require.Zero(t, m.KS(1<<11, 1<<20, 1<<5))
		m.Trace("bootstrap", true, Term{"ACC", 1})

		_, err := m.Result(1)
		require.ErrorIs(t, err, ErrInvalidBase)
		require.Empty(t, rec.Events)
	})
}

func TestModuli(t *testing.T) {

	t.Run("Prime", func(t *testing.T) {
		for _, Q := range []uint64{Q53, P53, Q26, P26} {
			require.True(t, IsPrime(Q), "%d", Q)
		}
		require.False(t, IsPrime(1<<27-1))
	})

	t.Run("NTTFriendly", func(t *testing.T) {
		require.NoError(t, CheckNTTFriendly(1<<11, Q53))
		require.NoError(t, CheckNTTFriendly(1<<11, P53))
		require.NoError(t, CheckNTTFriendly(1<<10, Q26))
		require.NoError(t, CheckNTTFriendly(1<<10, P26))
		require.Error(t, CheckNTTFriendly(1<<10, 1<<27-1))
		require.ErrorIs(t, CheckNTTFriendly(1000, Q53), ErrInvalidDimension)
	})
}

func TestTracer(t *testing.T) {

	e := Event{
		Stage:    "ckks",
		Terms:    []Term{{"lipschitz", 1}, {"acc", 3}},
		Additive: true,
	}

	t.Run("Event", func(t *testing.T) {
		require.Equal(t, 4.0, e.Total())
		require.Equal(t, []float64{0.25, 0.75}, e.Fractions())
		require.Equal(t, 1, e.Dominant())
		require.Equal(t, -1, Event{}.Dominant())
	})

	t.Run("Printer", func(t *testing.T) {
		noColor := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = noColor }()

		var buf bytes.Buffer
		p := NewPrinter(&buf)
		p.Trace(e)
		p.Trace(Event{Stage: "log2 std", Terms: []Term{{"sgn", 20.5}, {"msg", 21}}})
		require.Equal(t, "ckks: lipschitz=1 (0.2500) acc=3 (0.7500)\nlog2 std: sgn=20.5 msg=21\n", buf.String())
	})

	t.Run("Recorder", func(t *testing.T) {
		r := &Recorder{}
		r.Trace(e)
		r.Trace(Event{Stage: "core"})

		got, ok := r.Find("core")
		require.True(t, ok)
		require.Equal(t, "core", got.Stage)

		_, ok = r.Find("compensation")
		require.False(t, ok)

		r.Reset()
		require.Empty(t, r.Events)
	})
}
