package adapter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/pipeline"
)

// ErrInfeasible is returned when the bootstrapping noise leaves no room for
// the compressed input interval.
var ErrInfeasible = errors.New("compressed interval is empty")

// Encoding describes the CKKS side of the evaluation.
type Encoding struct {
	// DeltaIn is the scale of the input in the LWE ciphertext modulo Qin.
	DeltaIn float64
	// DeltaOut is the scale of the output in the LWE ciphertext modulo QOut.
	DeltaOut float64
	// QOut is the modulus of the output LWE ciphertext.
	QOut uint64
	// Lipschitz is the Lipschitz constant of the evaluated function.
	Lipschitz float64
}

// Std is the error of a CKKS value evaluated through a pipeline.
type Std struct {
	// Pipeline is the standard deviation added by the pipeline alone.
	Pipeline float64
	// Total also accounts for the CKKS input error amplified by the function.
	Total float64
}

// Bound returns the bound of the total error.
func (s Std) Bound(cfg estimator.Config) float64 {
	return cfg.Bound(s.Total)
}

// inputVar returns the variance of the CKKS input error, divided by the input
// scale and amplified by the Lipschitz constant.
func inputVar(est *estimator.Estimator, n int, Qin uint64, deltaIn, lipschitz float64) (float64, error) {
	std, err := PresetInputErrStd(est, n, Qin)
	if err != nil {
		return 0, err
	}
	return estimator.Sq(std / deltaIn * lipschitz), nil
}

// output returns c with the output modulus in place of Qin.
func (e Encoding) output(c pipeline.Common) pipeline.Common {
	c.Qin = e.QOut
	return c
}

// compose returns the Std of a pipeline adding lipVar, already in the output
// scale, to the pipeline variance btVar, given modulo QOut.
func (e Encoding) compose(est *estimator.Estimator, c pipeline.Common, lipVar, btVar float64) (Std, error) {
	input, err := inputVar(est, c.LWEDim, c.Qin, e.DeltaIn, e.Lipschitz)
	if err != nil {
		return Std{}, err
	}

	v := lipVar + btVar/estimator.Sq(e.DeltaOut)

	return Std{
		Pipeline: math.Sqrt(v),
		Total:    math.Sqrt(v + input),
	}, nil
}

// LMP22 returns the error of the plain functional bootstrapping. The input is
// bootstrapped modulo 2*Qin, so its noise is amplified by the Lipschitz
// constant before the LUT evaluation.
func LMP22(est *estimator.Estimator, c pipeline.Common, enc Encoding) (Std, error) {

	bt, err := est.BootstrapStd(2*c.Qin, c.LWEDim, c.Q, c.RingDim, c.BaseG, c.QKS, c.BaseKS)
	if err != nil {
		return Std{}, err
	}

	lipVar := estimator.Sq(bt * enc.Lipschitz / enc.DeltaIn)

	btVar, err := pipeline.TotalVar(est, pipeline.PlainBootstrap{Common: enc.output(c)})
	if err != nil {
		return Std{}, err
	}

	std, err := enc.compose(est, c, lipVar, btVar)
	if err != nil {
		return Std{}, err
	}

	trace(est, lipVar, btVar/estimator.Sq(enc.DeltaOut))

	return std, nil
}

// Compress returns the error of the compression-based full-domain
// bootstrapping: the input is mapped to [beta, q/2 - beta] with q = 2N, which
// amplifies its noise by (N-1)/(N/2-2*beta).
func Compress(est *estimator.Estimator, c pipeline.Common, enc Encoding) (Std, error) {

	bt, err := est.BootstrapStd(c.Qin, c.LWEDim, c.Q, c.RingDim, c.BaseG, c.QKS, c.BaseKS)
	if err != nil {
		return Std{}, err
	}

	N := float64(c.RingDim)
	beta := math.Ceil(est.NormBound * bt)

	width := N/2 - 2*beta
	if width <= 0 {
		return Std{}, fmt.Errorf("%w: beta=%g, N=%d", ErrInfeasible, beta, c.RingDim)
	}

	// 1/4 is the randomized rounding of the index.
	lipVar := (bt*bt + 1.0/4) * estimator.Sq((N-1)/width/enc.DeltaIn*enc.Lipschitz)

	btVar, err := lutVar(est, enc.output(c), 1)
	if err != nil {
		return Std{}, err
	}

	std, err := enc.compose(est, c, lipVar, btVar)
	if err != nil {
		return Std{}, err
	}

	trace(est, lipVar, btVar/estimator.Sq(enc.DeltaOut))

	return std, nil
}

// Comp returns the error of the Comp full-domain bootstrapping. If special is
// set, a single blind rotation produces the output.
func Comp(est *estimator.Estimator, c pipeline.Common, enc Encoding, special bool) (Std, error) {

	bt, err := est.BootstrapStd(c.Qin, c.LWEDim, c.Q, c.RingDim, c.BaseG, c.QKS, c.BaseKS)
	if err != nil {
		return Std{}, err
	}

	N := float64(c.RingDim)
	beta := math.Ceil(est.NormBound * bt)

	width := N - 2*beta
	if width <= 0 {
		return Std{}, fmt.Errorf("%w: beta=%g, N=%d", ErrInfeasible, beta, c.RingDim)
	}

	lipVar := (bt*bt + 1.0/4) * estimator.Sq((N-1)/width*enc.Lipschitz/enc.DeltaIn)

	rotations := 2
	if special {
		rotations = 1
	}

	btVar, err := lutVar(est, enc.output(c), rotations)
	if err != nil {
		return Std{}, err
	}

	std, err := enc.compose(est, c, lipVar, btVar)
	if err != nil {
		return Std{}, err
	}

	trace(est, lipVar, btVar/estimator.Sq(enc.DeltaOut))

	m := est.Model()
	m.Trace("compensation", false, estimator.Term{Label: "max err", Value: 0.5 / enc.DeltaIn * enc.Lipschitz})

	return std, nil
}

// lutVar returns the variance of the given number of blind rotations with a
// randomized rounding of the LUT values, plus the common tail, modulo c.Qin.
func lutVar(est *estimator.Estimator, c pipeline.Common, rotations int) (float64, error) {
	m := est.Model()
	v := float64(rotations) * (m.ACC(c.LWEDim, c.RingDim, c.Q, c.BaseG) + 1.0/4)
	v *= estimator.Sq(estimator.Ratio(c.Qin, c.Q))
	v += m.CommonPart(c.Qin, c.LWEDim, c.Q, c.RingDim, c.QKS, c.BaseKS)
	return m.Result(v)
}

func trace(est *estimator.Estimator, lipVar, accVar float64) {
	m := est.Model()
	m.Trace("ckks", true,
		estimator.Term{Label: "lipschitz", Value: lipVar},
		estimator.Term{Label: "acc", Value: accVar})
}

// exact returns the Std of the pipelines whose output does not depend on the
// noise of the input: only the CKKS input error is amplified.
func exact(est *estimator.Estimator, c pipeline.Common, enc Encoding, p pipeline.Pipeline) (Std, error) {

	core, err := p.Var(est)
	if err != nil {
		return Std{}, err
	}

	out := p.Params()

	tail, err := est.CommonPartVar(out.Qin, out.LWEDim, out.Q, out.RingDim, out.QKS, out.BaseKS)
	if err != nil {
		return Std{}, err
	}

	std, err := enc.compose(est, c, 0, core+tail)
	if err != nil {
		return Std{}, err
	}

	d2 := estimator.Sq(enc.DeltaOut)

	m := est.Model()
	m.Trace("core", true,
		estimator.Term{Label: "core", Value: core / d2},
		estimator.Term{Label: "common", Value: tail / d2})

	return std, nil
}

// CancelSign returns the error of the CancelSign full-domain bootstrapping.
func CancelSign(est *estimator.Estimator, c pipeline.Common, pk pipeline.Packing, enc Encoding) (Std, error) {
	return exact(est, c, enc, pipeline.CancelSignBootstrap{Common: enc.output(c), Packing: pk})
}

// Select returns the error of the Select full-domain bootstrapping.
func Select(est *estimator.Estimator, c pipeline.Common, pk pipeline.Packing, enc Encoding) (Std, error) {
	return exact(est, c, enc, pipeline.SelectBootstrap{Common: enc.output(c), Packing: pk})
}

// SelectAlt returns the error of the SelectAlt full-domain bootstrapping.
func SelectAlt(est *estimator.Estimator, c pipeline.Common, pk pipeline.Packing, enc Encoding) (Std, error) {
	return exact(est, c, enc, pipeline.SelectAltBootstrap{Common: enc.output(c), Packing: pk})
}

// PreSelect returns the error of the PreSelect full-domain bootstrapping. The
// LUT is selected in an intermediate plaintext space modulo pMid, decomposed
// in base Bmv, which adds a randomized rounding error.
func PreSelect(est *estimator.Estimator, c pipeline.Common, pMid, Bmv uint64, pk pipeline.Packing, enc Encoding) (Std, error) {

	out := enc.output(c)

	m := est.Model()

	dmv := m.Digits(pMid, Bmv)

	v := m.ACC(c.LWEDim, c.RingDim, c.Q, c.BaseG)
	v += estimator.Sq(estimator.Ratio(c.Q, pk.QPK)) * m.MS(c.Q, pk.QPK, c.RingDim)
	v += m.PK(c.RingDim, pk.QPK, c.Q, pk.BasePK)

	B := float64(Bmv)
	v = B*B*float64(c.RingDim)*v*float64(dmv)/4 + estimator.Sq(estimator.Ratio(c.Q, pMid))*1/4*2

	v += m.ACC(c.LWEDim, c.RingDim, c.Q, c.BaseG)
	v *= estimator.Sq(estimator.Ratio(out.Qin, c.Q))
	v += m.CommonPart(out.Qin, c.LWEDim, c.Q, c.RingDim, c.QKS, c.BaseKS)

	v, err := m.Result(v)
	if err != nil {
		return Std{}, err
	}

	return enc.compose(est, c, 0, v)
}

// ReLU returns the error of the ReLU bootstrapping of an input of scale
// delta modulo r.QInput. The output is modulo r.Qin with scale
// delta*r.Qin/r.QInput and the Lipschitz constant is 1.
func ReLU(est *estimator.Estimator, r pipeline.ReLUBootstrap, delta float64) (Std, error) {

	v, err := pipeline.TotalVar(est, r)
	if err != nil {
		return Std{}, err
	}

	enc := Encoding{
		DeltaIn:   delta,
		DeltaOut:  delta * estimator.Ratio(r.Qin, r.QInput),
		QOut:      r.Qin,
		Lipschitz: 1,
	}

	c := r.Common
	c.Qin = r.QInput

	return enc.compose(est, c, 0, v)
}
