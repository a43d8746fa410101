package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/fdfb-noise-estimator/adapter"
	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/pipeline"
)

// ErrNoStop is returned when an exploration reaches MaxLogQ while a base is
// still feasible.
var ErrNoStop = errors.New("exploration did not stop")

// MaxLogQ is the largest log2 of the modulus q an exploration may visit.
const MaxLogQ = 62

// Criterion reports whether the gadget base Bg is infeasible for q = 2^logQ.
type Criterion func(est *estimator.Estimator, logQ int, Bg uint64) (infeasible bool, err error)

// Step records that the exploration moved to the gadget base 2^LogBaseG at
// q = 2^LogQ.
type Step struct {
	LogQ     int
	LogBaseG int
}

// Exploration is the result of Explore. Stop is the log2 of the first q for
// which no base is feasible.
type Exploration struct {
	Steps []Step
	Stop  int
}

// Explore walks q = 2^start, 2^(start+1), ... and, for each q, drops the
// candidate bases, ordered by decreasing size, until one is feasible. A base
// that was dropped is never reconsidered. A step is recorded each time the
// base changes, and the exploration stops at the first q for which all bases
// were dropped.
func Explore(est *estimator.Estimator, start int, bases []uint64, infeasible Criterion) (e Exploration, err error) {

	if len(bases) == 0 {
		return e, fmt.Errorf("%w: no candidate base", estimator.ErrInvalidBase)
	}

	var idx int

	for logQ := start; logQ <= MaxLogQ; logQ++ {

		var changed, bad bool

		for idx < len(bases) {

			if bad, err = infeasible(est, logQ, bases[idx]); err != nil {
				return e, fmt.Errorf("log(q)=%d, Bg=%d: %w", logQ, bases[idx], err)
			}

			if !bad {
				break
			}

			idx++
			changed = true
		}

		if idx == len(bases) {
			e.Stop = logQ
			return
		}

		if changed {
			e.Steps = append(e.Steps, Step{LogQ: logQ, LogBaseG: estimator.FloorLog2(bases[idx])})
		}
	}

	return e, fmt.Errorf("%w: log(q) > %d", ErrNoStop, MaxLogQ)
}

// Setting are the bootstrapping parameters shared by the explorations of the
// homomorphic decomposition of an LWE ciphertext.
var Setting = struct {
	Start  int
	Bases  []uint64
	LWEDim int
	Q      uint64
	N      int
	QKS    uint64
	BaseKS uint64
}{
	Start:  13,
	Bases:  []uint64{1 << 27, 1 << 18, 1 << 14},
	LWEDim: estimator.N35,
	Q:      estimator.Q53,
	N:      1 << 11,
	QKS:    1 << 35,
	BaseKS: 1 << 5,
}

func bootstrapStd(est *estimator.Estimator, logQ int, Bg uint64) (float64, error) {
	return est.BootstrapStd(1<<logQ, Setting.LWEDim, Setting.Q, Setting.N, Bg, Setting.QKS, Setting.BaseKS)
}

// reduced returns the std of the bootstrapping output scaled by 2^-logScale
// and switched from 2^30 to 2^logTo.
func reduced(est *estimator.Estimator, std float64, logScale, logTo int) (float64, error) {
	ms, err := estimator.VarMS(1<<30, 1<<logTo, Setting.LWEDim)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(std*std*math.Ldexp(1, -logScale) + ms), nil
}

// HomFloor is infeasible when the bound of the difference of two
// bootstrappings, or of a bootstrapping switched to 2^26, reaches 128.
func HomFloor(est *estimator.Estimator, logQ int, Bg uint64) (bool, error) {

	bt, err := bootstrapStd(est, logQ, Bg)
	if err != nil {
		return false, err
	}

	ms, err := estimator.VarMS(1<<30, 1<<26, Setting.LWEDim)
	if err != nil {
		return false, err
	}

	return est.Bound(bt*math.Sqrt2) >= 128 ||
		est.Bound(math.Sqrt(bt*bt*(1+math.Ldexp(1, -8))+ms)) >= 128, nil
}

// HomFloorAlt is infeasible when the bound of the difference of two
// bootstrappings reaches 512, or when the bootstrapping scaled by 2^-5 and
// switched to 2^25 reaches 64.
func HomFloorAlt(est *estimator.Estimator, logQ int, Bg uint64) (bool, error) {

	bt, err := bootstrapStd(est, logQ, Bg)
	if err != nil {
		return false, err
	}

	r, err := reduced(est, bt, 10, 25)
	if err != nil {
		return false, err
	}

	return est.Bound(bt*math.Sqrt2) >= 512 || est.Bound(r) >= 64, nil
}

// HomDecompReduce is infeasible when the bound of the bootstrapping scaled by
// 2^-4 and switched to 2^25, plus 64, reaches 128.
func HomDecompReduce(est *estimator.Estimator, logQ int, Bg uint64) (bool, error) {

	bt, err := bootstrapStd(est, logQ, Bg)
	if err != nil {
		return false, err
	}

	r, err := reduced(est, bt, 8, 25)
	if err != nil {
		return false, err
	}

	return est.Bound(r)+64 >= 128, nil
}

// HomDecompFDFB is infeasible when the output of the compression full-domain
// bootstrapping modulo 2^logQ, scaled by 2^-5 and switched to 2^25, reaches 64.
func HomDecompFDFB(est *estimator.Estimator, logQ int, Bg uint64) (bool, error) {

	c := pipeline.Common{
		Qin:     1 << 12,
		LWEDim:  Setting.LWEDim,
		Q:       Setting.Q,
		RingDim: Setting.N,
		BaseG:   Bg,
		QKS:     Setting.QKS,
		BaseKS:  Setting.BaseKS,
	}

	std, err := adapter.Compress(est, c, adapter.Encoding{
		DeltaIn:   1,
		DeltaOut:  1,
		QOut:      1 << logQ,
		Lipschitz: 1,
	})
	if err != nil {
		return false, err
	}

	r, err := reduced(est, std.Pipeline, 10, 25)
	if err != nil {
		return false, err
	}

	return est.Bound(r) >= 64, nil
}

// Loop is a named exploration criterion.
type Loop struct {
	Name       string
	Infeasible Criterion
}

// Loops returns the explorations of the homomorphic decomposition.
func Loops() []Loop {
	return []Loop{
		{"HomFloor", HomFloor},
		{"HomFloorAlt", HomFloorAlt},
		{"HomDecomp-Reduce", HomDecompReduce},
		{"HomDecomp-FDFB", HomDecompFDFB},
	}
}
