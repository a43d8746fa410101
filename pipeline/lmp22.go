package pipeline

import (
	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// PlainBootstrap is the functional bootstrapping of LMP22: a single blind
// rotation of the LUT.
type PlainBootstrap struct {
	Common
}

// Kind returns LMP22.
func (PlainBootstrap) Kind() Kind { return LMP22 }

// Var returns the variance of the blind rotation rescaled to Qin.
func (p PlainBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	v := breakdown(m, estimator.Term{Label: "acc", Value: p.acc(m)})
	return m.Result(v * p.rescale())
}

// DecompQ is the full-domain functional bootstrapping of KS21. The sign is
// computed with a first blind rotation, packed into an RLWE ciphertext and
// multiplied with the LUT decomposed in base BaseG1 over Q. A second blind
// rotation evaluates the selected LUT.
type DecompQ struct {
	Common
	Packing
	// BaseG1 is the decomposition base of the LUT product.
	BaseG1 uint64
}

// Kind returns KS21.
func (DecompQ) Kind() Kind { return KS21 }

// Var returns the output variance of the second blind rotation.
func (p DecompQ) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)

	dg1 := m.Digits(p.Q, p.BaseG1)

	ms, pk := p.packing(m, p.QPK, p.BasePK)
	v := p.acc(m) + ms + pk

	// The LUT is not assumed random, so the digits contribute B^2/4.
	B := float64(p.BaseG1)
	v = B * B * float64(p.RingDim) * v * float64(dg1) / 4

	m.Trace("phase 1", false, estimator.Term{Label: "var", Value: v * p.rescale()})

	v = breakdown(m,
		estimator.Term{Label: "phase 1", Value: v},
		estimator.Term{Label: "acc", Value: p.acc(m)})

	return m.Result(v * p.rescale())
}
