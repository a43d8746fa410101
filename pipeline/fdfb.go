package pipeline

import (
	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// Packing holds the parameters of the LWE to RLWE packing.
type Packing struct {
	// QPK is the modulus the LWE ciphertext is switched to before packing.
	QPK uint64
	// BasePK is the base of the packing key.
	BasePK uint64
}

// PreSelectBootstrap selects the LUT with the sign before the blind rotation.
// The sign scales the digits of the LUT in base BaseMV, the selected LUT is
// packed and the second blind rotation evaluates it.
type PreSelectBootstrap struct {
	Common
	Packing
	// T is the plaintext modulus p.
	T int
	// BaseMV is the decomposition base of the LUT.
	BaseMV uint64
}

// Kind returns PreSelect.
func (PreSelectBootstrap) Kind() Kind { return PreSelect }

// Var returns the output variance of the second blind rotation.
func (p PreSelectBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	checkPlaintext(m, p.T)

	dmv := m.Digits(uint64(2*p.T), p.BaseMV)

	// 1/4 is the randomized rounding of the selected digits.
	v := p.acc(m) + 1.0/4

	ms, pk := p.packing(m, p.QPK, p.BasePK)
	v += ms + pk

	B := float64(p.BaseMV)
	v *= B * B * float64(p.T) * float64(dmv) / 4

	m.Trace("phase 1", false, estimator.Term{Label: "var", Value: v * p.rescale()})

	v = breakdown(m,
		estimator.Term{Label: "phase 1", Value: v},
		estimator.Term{Label: "acc", Value: p.acc(m)})

	return m.Result(v * p.rescale())
}

// CancelSignBootstrap cancels the sign of the blind rotation output with a
// packed correction.
type CancelSignBootstrap struct {
	Common
	Packing
}

// Kind returns CancelSign.
func (CancelSignBootstrap) Kind() Kind { return CancelSign }

// Var returns the output variance of the packed blind rotation.
func (p CancelSignBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	ms, pk := p.packing(m, p.QPK, p.BasePK)

	v := breakdown(m,
		estimator.Term{Label: "acc", Value: p.acc(m)},
		estimator.Term{Label: "ms", Value: ms},
		estimator.Term{Label: "pk", Value: pk})

	return m.Result(v * p.rescale())
}

// SelectBootstrap packs the two candidate outputs and selects one of them
// with a final blind rotation.
type SelectBootstrap struct {
	Common
	Packing
}

// Kind returns Select.
func (SelectBootstrap) Kind() Kind { return Select }

// Var returns the output variance of the selection blind rotation.
func (p SelectBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)

	acc := p.acc(m)
	ms, pk := p.packing(m, p.QPK, p.BasePK)

	v := breakdown(m,
		estimator.Term{Label: "acc", Value: acc},
		estimator.Term{Label: "ms x2", Value: 2 * ms},
		estimator.Term{Label: "pk x2", Value: 2 * pk},
		estimator.Term{Label: "acc (selection)", Value: acc})

	return m.Result(v * p.rescale())
}

// SelectBootstrapMV is SelectBootstrap where both candidates come from one
// multi-value blind rotation with the LUTs decomposed in base BaseMV.
type SelectBootstrapMV struct {
	Common
	Packing
	// T is the plaintext modulus p.
	T int
	// BaseMV is the decomposition base of the multi-value LUTs.
	BaseMV uint64
}

// Kind returns SelectMV.
func (SelectBootstrapMV) Kind() Kind { return SelectMV }

// Var returns the output variance of the selection blind rotation.
func (p SelectBootstrapMV) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	checkPlaintext(m, p.T)

	dmv := m.Digits(uint64(2*p.T), p.BaseMV)

	// The inner product with the decomposed LUT must stay small enough to
	// select one out of two.
	B := float64(p.BaseMV)
	acc := p.acc(m)

	ms, pk := p.packing(m, p.QPK, p.BasePK)

	v := breakdown(m,
		estimator.Term{Label: "acc (multi-value)", Value: acc * float64(dmv) * B * B / 4 * float64(p.T)},
		estimator.Term{Label: "ms x2", Value: 2 * ms},
		estimator.Term{Label: "pk x2", Value: 2 * pk},
		estimator.Term{Label: "acc (selection)", Value: acc})

	return m.Result(v * p.rescale())
}

// SelectAltBootstrap evaluates the selection with three blind rotations and
// a sum.
type SelectAltBootstrap struct {
	Common
	Packing
}

// Kind returns SelectAlt.
func (SelectAltBootstrap) Kind() Kind { return SelectAlt }

// Var returns the variance of the sum.
func (p SelectAltBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)

	acc := p.acc(m)
	ms, pk := p.packing(m, p.QPK, p.BasePK)

	// The packed rotation is added to three plain ones.
	v := breakdown(m,
		estimator.Term{Label: "acc", Value: acc},
		estimator.Term{Label: "ms", Value: ms},
		estimator.Term{Label: "pk", Value: pk},
		estimator.Term{Label: "acc x3", Value: 3 * acc})

	return m.Result(v * p.rescale())
}

// SelectAltBootstrapMV is SelectAltBootstrap with a multi-value blind
// rotation of base 4p.
type SelectAltBootstrapMV struct {
	Common
	Packing
	// T is the plaintext modulus p.
	T int
}

// Kind returns SelectAltMV.
func (SelectAltBootstrapMV) Kind() Kind { return SelectAltMV }

// Var returns the variance of the sum.
func (p SelectAltBootstrapMV) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	checkPlaintext(m, p.T)

	t := float64(p.T)

	acc := p.acc(m)
	diff := acc * t * (t - 1) * (t - 1)
	add := acc * t * 4 * (t - 1) * (t - 1)

	ms, pk := p.packing(m, p.QPK, p.BasePK)
	diff += ms + pk

	v := breakdown(m,
		estimator.Term{Label: "diff", Value: diff},
		estimator.Term{Label: "acc", Value: acc},
		estimator.Term{Label: "diff", Value: diff},
		estimator.Term{Label: "add", Value: add})

	return m.Result(v * p.rescale())
}

// CompBootstrap is the compression variant: two blind rotations whose test
// vectors do not depend on the LUT.
type CompBootstrap struct {
	Common
}

// Kind returns Comp.
func (CompBootstrap) Kind() Kind { return Comp }

// Var returns the variance of the preprocessing.
func (p CompBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	v := breakdown(m, estimator.Term{Label: "acc x2", Value: p.acc(m) * 2})
	return m.Result(v * p.rescale())
}

// CompBootstrapMV is CompBootstrap with a multi-value blind rotation.
type CompBootstrapMV struct {
	Common
	// T is the plaintext modulus p.
	T int
}

// Kind returns CompMV.
func (CompBootstrapMV) Kind() Kind { return CompMV }

// Var returns the variance of the preprocessing.
func (p CompBootstrapMV) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)
	checkPlaintext(m, p.T)
	t := float64(p.T)
	v := breakdown(m, estimator.Term{Label: "acc (multi-value)", Value: p.acc(m) * (4*(t-1) + t*t)})
	return m.Result(v * p.rescale())
}

// ReLUBootstrap is the blind rotation specialized to the ReLU function. The
// input modulo QInput is switched to QPK and packed with a key of dimension
// LWEDim before the blind rotation. The output is usually kept modulo QKS,
// in which case Qin equals QKS and the final modulus switch vanishes.
type ReLUBootstrap struct {
	Common
	Packing
	// QInput is the modulus of the input ciphertext.
	QInput uint64
}

// Kind returns ReLU.
func (ReLUBootstrap) Kind() Kind { return ReLU }

// Var returns the output variance of the blind rotation rescaled to Qin.
func (p ReLUBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := p.model(est)

	v := breakdown(m,
		estimator.Term{Label: "ms", Value: estimator.Sq(estimator.Ratio(p.Q, p.QPK)) * m.MS(p.QInput, p.QPK, p.RingDim)},
		estimator.Term{Label: "pk", Value: m.PK(p.LWEDim, p.QPK, p.Q, p.BasePK)},
		estimator.Term{Label: "acc", Value: p.acc(m)})

	return m.Result(v * p.rescale())
}
