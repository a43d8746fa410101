package pipeline

import (
	"fmt"
	"math"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// WoP holds the parameters of the bootstrapping without padding: the sign
// and the message are blind rotated, packed and multiplied homomorphically
// in a BFV-like scheme of modulus Q with auxiliary modulus P.
type WoP struct {
	Common
	Packing
	// T is the plaintext modulus p.
	T int
	// P is the auxiliary modulus of the BFV multiplication.
	P uint64
	// BaseRL is the base of the relinearization key.
	BaseRL uint64
	// Pieces is the number of pieces of the evaluated function (1 or 2).
	Pieces int
}

func (w WoP) check(m *estimator.Model) {
	checkPlaintext(m, w.T)
	if w.P == 0 {
		m.Fail(fmt.Errorf("%w: P=0", estimator.ErrInvalidModulus))
	}
	if w.Pieces < 1 {
		m.Fail(fmt.Errorf("invalid number of pieces: %d", w.Pieces))
	}
}

// multiValue returns the blind rotation variances of the sign and of the
// message when both are evaluated with a single multi-value blind rotation.
func (w WoP) multiValue(acc float64) (sgn, msg float64) {
	p := float64(w.T)
	sgn = acc * 4
	msg = acc * p * (p - 1) * (p - 1)
	if w.Pieces == 2 {
		msg *= 4
	}
	return
}

func (w WoP) relin(m *estimator.Model) float64 {
	drl := m.Digits(w.Q, w.BaseRL)
	B := float64(w.BaseRL)
	return float64(drl) * B * B / 12 * float64(w.RingDim) * m.EncStd * m.EncStd
}

// budget returns the variance of the BFV product with the refined analysis.
func (w WoP) budget(m *estimator.Model, sgn, msg float64) float64 {

	m.Trace("log2 std", false,
		estimator.Term{Label: "sgn", Value: math.Log2(math.Sqrt(sgn))},
		estimator.Term{Label: "msg", Value: math.Log2(math.Sqrt(msg))})

	ms, pk := w.packing(m, w.QPK, w.BasePK)
	sgn += ms
	msg += ms

	var (
		p   = float64(w.T)
		N   = float64(w.RingDim)
		QP  = estimator.Ratio(w.Q, w.P)
		PQ  = estimator.Ratio(w.P, w.Q)
		pP  = p / float64(w.P)
		pQ  = p / float64(w.Q)
		vms = N/18 + 1.0/12
		bg  = PQ*PQ*pk + vms
	)

	terms := []estimator.Term{
		{Label: "msg+sgn", Value: msg + p*p/4*sgn},
		{Label: "pk", Value: QP*QP*bg + p*p/4*pk},
		{Label: "pk*pk", Value: pP * pP * N * pk * bg},
		{Label: "pk*bt", Value: pQ*pQ*pk*msg + pP*pP*sgn*bg},
		{Label: "sgn*msg", Value: pP * pP * sgn * msg},
		{Label: "ms", Value: 1.0/12 + N/18 + N/12*4/9*N},
		{Label: "ms*bt", Value: vms * p * p * (msg + sgn)},
		{Label: "ms*pk", Value: vms * p * p * ((2*pk + QP*QP*vms) * N)},
		{Label: "relin", Value: w.relin(m)},
	}

	m.Trace("wop-pbs", true, terms...)

	var v float64
	for _, t := range terms[:len(terms)-1] {
		v += t.Value
	}

	m.Trace("log2 std", false, estimator.Term{Label: "before KS", Value: math.Log2(math.Sqrt(v))})

	parts := []estimator.Term{
		{Label: "product", Value: v},
		terms[len(terms)-1],
	}

	// The message of the second piece is added after the product.
	if w.Pieces > 1 {
		parts = append(parts, estimator.Term{Label: "msg", Value: msg})
	}

	return breakdown(m, parts...) * w.rescale()
}

// budgetOld returns the variance of the BFV product with the analysis of the
// WoP-PBS paper, where every piece needs its own product.
func (w WoP) budgetOld(m *estimator.Model, sgn, msg float64) float64 {

	ms, pk := w.packing(m, w.QPK, w.BasePK)
	sgn += ms + pk
	msg += ms + pk

	var (
		p   = float64(w.T)
		N   = float64(w.RingDim)
		QP  = estimator.Ratio(w.Q, w.P)
		pP  = p / float64(w.P)
		pQ  = p / float64(w.Q)
		vms = N/18 + 1.0/12
	)

	terms := []estimator.Term{
		{Label: "msg+sgn", Value: N * (msg + p*p/4*sgn)},
		{Label: "sgn*msg", Value: N * (pQ * pQ * msg * sgn)},
		{Label: "ms", Value: N * (QP*QP*vms + pP*pP*sgn*vms)},
		{Label: "ms ct", Value: 1.0/12 + N/18 + N/12*4/9*N},
		{Label: "ms*bt", Value: vms * p * p * (msg + sgn) * N},
		{Label: "ms*ms", Value: vms * p * p * (QP * QP * vms) * N},
		{Label: "relin", Value: w.relin(m)},
	}

	m.Trace("wop-pbs", true, terms...)

	var v float64
	for _, t := range terms[:len(terms)-1] {
		v += t.Value
	}

	v *= float64(w.Pieces)

	m.Trace("log2 std", false, estimator.Term{Label: "before KS", Value: math.Log2(math.Sqrt(v))})

	v = breakdown(m,
		estimator.Term{Label: "products", Value: v},
		terms[len(terms)-1])

	return v * w.rescale()
}

// WoPBootstrap is the bootstrapping without padding with two independent blind
// rotations for the sign and the message.
type WoPBootstrap struct {
	WoP
}

// Kind returns WoPPBS.
func (WoPBootstrap) Kind() Kind { return WoPPBS }

// Var returns the output variance of the BFV product.
func (w WoPBootstrap) Var(est *estimator.Estimator) (float64, error) {
	m := w.model(est)
	w.check(m)
	acc := w.acc(m)
	return m.Result(w.budget(m, acc, acc))
}

// WoPBootstrapMV is WoPBootstrap with a multi-value blind rotation.
type WoPBootstrapMV struct {
	WoP
}

// Kind returns WoPPBSMV.
func (WoPBootstrapMV) Kind() Kind { return WoPPBSMV }

// Var returns the output variance of the BFV product.
func (w WoPBootstrapMV) Var(est *estimator.Estimator) (float64, error) {
	m := w.model(est)
	w.check(m)
	sgn, msg := w.multiValue(w.acc(m))
	return m.Result(w.budget(m, sgn, msg))
}

// WoPBootstrapOld is WoPBootstrap under the noise analysis of the WoP-PBS paper.
type WoPBootstrapOld struct {
	WoP
}

// Kind returns WoPPBSOld.
func (WoPBootstrapOld) Kind() Kind { return WoPPBSOld }

// Var returns the output variance of the BFV products.
func (w WoPBootstrapOld) Var(est *estimator.Estimator) (float64, error) {
	m := w.model(est)
	w.check(m)
	acc := w.acc(m)
	return m.Result(w.budgetOld(m, acc, acc))
}

// WoPBootstrapMVOld is WoPBootstrapMV under the noise analysis of the WoP-PBS paper.
type WoPBootstrapMVOld struct {
	WoP
}

// Kind returns WoPPBSMVOld.
func (WoPBootstrapMVOld) Kind() Kind { return WoPPBSMVOld }

// Var returns the output variance of the BFV products.
func (w WoPBootstrapMVOld) Var(est *estimator.Estimator) (float64, error) {
	m := w.model(est)
	w.check(m)
	sgn, msg := w.multiValue(w.acc(m))
	return m.Result(w.budgetOld(m, sgn, msg))
}
