package paramsets

import (
	"fmt"

	"github.com/tuneinsight/fdfb-noise-estimator/adapter"
	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/pipeline"
)

// CKKSSet is a named evaluation of a function on a CKKS value through a
// bootstrapping pipeline.
type CKKSSet struct {
	Name string
	Eval func(est *estimator.Estimator) (adapter.Std, error)
}

// Evaluate returns the error of s.
func (s CKKSSet) Evaluate(est *estimator.Estimator) (adapter.Std, error) {
	std, err := s.Eval(est)
	if err != nil {
		return std, fmt.Errorf("%s: %w", s.Name, err)
	}
	return std, nil
}

// sigmoid is the Lipschitz constant of the sigmoid.
const sigmoid = 0.25

func ckks(Qin uint64, N int) pipeline.Common {
	return pipeline.Common{
		Qin:     Qin,
		LWEDim:  estimator.N35,
		Q:       estimator.Q53,
		RingDim: N,
		BaseG:   1 << 27,
		QKS:     1 << 25,
		BaseKS:  1 << 5,
	}
}

func encoding(deltaIn, lipschitz float64) adapter.Encoding {
	return adapter.Encoding{DeltaIn: deltaIn, DeltaOut: 1 << 23, QOut: 1 << 25, Lipschitz: lipschitz}
}

// CKKS are the evaluations of a CKKS value, the output being decoded with
// scale 2^23 modulo 2^25.
var CKKS = []CKKSSet{
	{"ckks/EvalFunc", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.LMP22(est, ckks(1<<11, 1<<10), encoding(1<<7, 1))
	}},
	{"ckks/Compress", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.Compress(est, ckks(1<<12, 1<<11), encoding(1<<8, 1))
	}},
	{"ckks/Comp", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.Comp(est, ckks(1<<12, 1<<11), encoding(1<<8, 1), false)
	}},
	{"ckks/Comp-special", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.Comp(est, ckks(1<<12, 1<<11), encoding(1<<8, 1), true)
	}},
	{"ckks/CancelSign/sigmoid", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.CancelSign(est, ckks(1<<11, 1<<11), packing(1<<25), encoding(1<<7, sigmoid))
	}},
	{"ckks/Select/sigmoid", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.Select(est, ckks(1<<12, 1<<11), packing(1<<25), encoding(1<<8, sigmoid))
	}},
	{"ckks/SelectAlt/sigmoid", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.SelectAlt(est, ckks(1<<12, 1<<11), packing(1<<25), encoding(1<<8, sigmoid))
	}},
	{"ckks/PreSelect/sigmoid", func(est *estimator.Estimator) (adapter.Std, error) {
		return adapter.PreSelect(est, ckks(1<<12, 1<<11), 1<<8, 2, packing(1<<25), encoding(1<<8, sigmoid))
	}},
	{"ckks/ReLU", func(est *estimator.Estimator) (adapter.Std, error) {
		r := pipeline.ReLUBootstrap{
			Common:  common(estimator.N35, 1<<11, 1<<35, estimator.Q53, 1<<27),
			Packing: packing(1 << 35),
			QInput:  1 << 28,
		}
		r.QKS = 1 << 35
		return adapter.ReLU(est, r, 1<<24)
	}},
}

// LookupCKKS returns the CKKS evaluation of the given name.
func LookupCKKS(name string) (CKKSSet, error) {
	for _, s := range CKKS {
		if s.Name == name {
			return s, nil
		}
	}
	return CKKSSet{}, fmt.Errorf("%w: %q", ErrUnknownSet, name)
}
