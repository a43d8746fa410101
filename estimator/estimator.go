package estimator

import (
	"math"
)

// Estimator evaluates noise budgets for a given configuration and forwards
// the diagnostic events of each evaluation to its Tracer.
type Estimator struct {
	Config
	Tracer Tracer
}

// NewEstimator returns an Estimator for cfg. A nil tracer discards all events.
func NewEstimator(cfg Config, tracer Tracer) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if tracer == nil {
		tracer = Discard{}
	}

	return &Estimator{
		Config: cfg,
		Tracer: tracer,
	}, nil
}

// Model returns a new variance builder bound to the estimator.
func (e *Estimator) Model() *Model {
	return &Model{
		Config: e.Config,
		tracer: e.Tracer,
	}
}

// CommonPartVar returns the variance of the tail shared by all bootstrapping
// pipelines, expressed modulo Qin: switch from Q to qks, key switch an RLWE
// key of degree N to an LWE key of dimension n, switch from qks to Qin.
func (e *Estimator) CommonPartVar(Qin uint64, n int, Q uint64, N int, qks, Bks uint64) (float64, error) {
	m := e.Model()
	return m.Result(m.CommonPart(Qin, n, Q, N, qks, Bks))
}

// BootstrapStd returns the standard deviation of the output of a plain
// functional bootstrapping modulo Qin: one blind rotation followed by the
// common key switching and modulus switching tail.
func (e *Estimator) BootstrapStd(Qin uint64, n int, Q uint64, N int, Bg, qks, Bks uint64) (float64, error) {
	m := e.Model()
	return m.Result(m.BootstrapStd(Qin, n, Q, N, Bg, qks, Bks))
}

// Model accumulates calls to the primitive noise model. The first domain error
// is kept: every later call returns 0 and emits nothing, and Result reports
// the error.
type Model struct {
	Config
	tracer Tracer
	err    error
}

// Err returns the first error encountered, if any.
func (m *Model) Err() error {
	return m.err
}

// Fail records err unless an error was already recorded.
func (m *Model) Fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Result returns (v, nil), or (0, err) if an error was recorded.
func (m *Model) Result(v float64) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return v, nil
}

// Trace emits an event to the tracer.
func (m *Model) Trace(stage string, additive bool, terms ...Term) {
	if m.err != nil || m.tracer == nil {
		return
	}
	m.tracer.Trace(Event{Stage: stage, Terms: terms, Additive: additive})
}

func (m *Model) keep(v float64, err error) float64 {
	if m.err != nil {
		return 0
	}
	if err != nil {
		m.err = err
		return 0
	}
	return v
}

// Digits returns the number of base-B digits of M.
func (m *Model) Digits(M, B uint64) int {
	d, err := Digits(M, B)
	return int(m.keep(float64(d), err))
}

// ACC returns VarACC with the configured encryption noise.
func (m *Model) ACC(n, N int, Q, Bg uint64) float64 {
	return m.keep(VarACC(n, N, Q, Bg, m.EncStd))
}

// KS returns VarKS with the configured encryption noise.
func (m *Model) KS(N int, qks, Bks uint64) float64 {
	return m.keep(VarKS(N, qks, Bks, m.EncStd))
}

// KSMult returns VarKSMult with the configured encryption noise.
func (m *Model) KSMult(N int, qks, Bks uint64) float64 {
	return m.keep(VarKSMult(N, qks, Bks, m.EncStd))
}

// MS returns VarMS.
func (m *Model) MS(Qfrom, Qto uint64, dim int) float64 {
	return m.keep(VarMS(Qfrom, Qto, dim))
}

// PK returns VarPKScaled with the configured encryption noise.
func (m *Model) PK(N int, qfrom, qto, Bpk uint64) float64 {
	return m.keep(VarPKScaled(N, qfrom, qto, Bpk, m.EncStd))
}

// MemKS returns MemKS, or MemKSMult if mult is set.
func (m *Model) MemKS(n, N int, qks, Bks uint64, mult bool) float64 {
	if mult {
		return m.keep(MemKSMult(n, N, qks, Bks))
	}
	return m.keep(MemKS(n, N, qks, Bks))
}

// CommonPart returns the common tail variance, see Estimator.CommonPartVar.
// The switch from Q to qks and the key switching are rescaled to Qin before
// the final switch from qks to Qin is added; the two modulus switches do not
// commute.
func (m *Model) CommonPart(Qin uint64, n int, Q uint64, N int, qks, Bks uint64) float64 {
	return (m.MS(Q, qks, N)+m.KS(N, qks, Bks))*Sq(Ratio(Qin, qks)) + m.MS(qks, Qin, n)
}

// BootstrapStd returns the output standard deviation of a plain bootstrapping,
// see Estimator.BootstrapStd.
func (m *Model) BootstrapStd(Qin uint64, n int, Q uint64, N int, Bg, qks, Bks uint64) float64 {

	acc := m.ACC(n, N, Q, Bg)
	ms := m.MS(Q, qks, N)
	ks := m.KS(N, qks, Bks)

	v := acc*Sq(Ratio(qks, Q)) + ms + ks

	msOut := m.MS(qks, Qin, n)

	m.Trace("bootstrap", true,
		Term{"ACC", acc * Sq(Ratio(Qin, Q))},
		Term{"ks", (ms + ks) * Sq(Ratio(Qin, qks))},
		Term{"ms", msOut})

	return math.Sqrt(v*Sq(Ratio(Qin, qks)) + msOut)
}
