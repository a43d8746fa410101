// Package pipeline implements the noise composition of the functional
// bootstrapping variants. Each variant is a struct holding its parameters;
// its Var method returns the variance of the output of the variant,
// expressed modulo Qin and without the final key switching and modulus
// switching tail, which is shared by all variants.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// ErrUnknownKind is returned when parsing an unknown variant name.
var ErrUnknownKind = errors.New("unknown pipeline kind")

// Kind identifies a bootstrapping variant.
type Kind int

const (
	// LMP22 is the plain functional bootstrapping.
	LMP22 = Kind(iota)
	// KS21 is the full-domain functional bootstrapping with decomposition on Q.
	KS21
	// WoPPBS is the bootstrapping without padding (new noise analysis).
	WoPPBS
	// WoPPBSMV is WoPPBS with multi-value blind rotation.
	WoPPBSMV
	// WoPPBSOld is WoPPBS with the noise analysis of the WoP-PBS paper.
	WoPPBSOld
	// WoPPBSMVOld is WoPPBSMV with the noise analysis of the WoP-PBS paper.
	WoPPBSMVOld
	// PreSelect selects the LUT with the sign before the blind rotation.
	PreSelect
	// CancelSign cancels the sign with a second LUT evaluation.
	CancelSign
	// Select selects between two packed LUT outputs with a final blind rotation.
	Select
	// SelectMV is Select with a decomposed multi-value blind rotation.
	SelectMV
	// SelectAlt is the three blind rotations variant of Select.
	SelectAlt
	// SelectAltMV is SelectAlt with a multi-value blind rotation.
	SelectAltMV
	// Comp is the compression variant of the full-domain bootstrapping.
	Comp
	// CompMV is Comp with a multi-value blind rotation.
	CompMV
	// ReLU is the blind rotation specialized to the ReLU function.
	ReLU
)

var kindNames = [...]string{
	LMP22:       "LMP22",
	KS21:        "KS21",
	WoPPBS:      "WoPPBS",
	WoPPBSMV:    "WoPPBS-MV",
	WoPPBSOld:   "WoPPBS-old",
	WoPPBSMVOld: "WoPPBS-MV-old",
	PreSelect:   "FDFB-PreSelect",
	CancelSign:  "FDFB-CancelSign",
	Select:      "FDFB-Select",
	SelectMV:    "FDFB-Select-MV",
	SelectAlt:   "FDFB-SelectAlt",
	SelectAltMV: "FDFB-SelectAlt-MV",
	Comp:        "FDFB-Comp",
	CompMV:      "FDFB-Comp-MV",
	ReLU:        "ReLU",
}

// Kinds returns all the variants.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind of the given name (case insensitive).
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Common holds the parameters shared by all variants.
type Common struct {
	// Qin is the modulus the output is expressed in, i.e. the input modulus
	// of the next bootstrapping.
	Qin uint64
	// LWEDim is the LWE dimension n.
	LWEDim int
	// Q is the modulus of the blind rotation.
	Q uint64
	// RingDim is the RLWE ring degree N.
	RingDim int
	// BaseG is the gadget base of the blind rotation key.
	BaseG uint64
	// QKS is the key switching modulus of the common tail.
	QKS uint64
	// BaseKS is the key switching base of the common tail.
	BaseKS uint64
}

// Params returns the common parameters.
func (c Common) Params() Common {
	return c
}

// model returns a variance builder that already failed if the common
// parameters are invalid.
func (c Common) model(est *estimator.Estimator) *estimator.Model {
	m := est.Model()
	if c.Qin == 0 || c.Q == 0 {
		m.Fail(fmt.Errorf("%w: Qin=%d, Q=%d", estimator.ErrInvalidModulus, c.Qin, c.Q))
	}
	if c.LWEDim <= 0 || c.RingDim <= 0 {
		m.Fail(fmt.Errorf("%w: n=%d, N=%d", estimator.ErrInvalidDimension, c.LWEDim, c.RingDim))
	}
	return m
}

func (c Common) acc(m *estimator.Model) float64 {
	return m.ACC(c.LWEDim, c.RingDim, c.Q, c.BaseG)
}

// rescale returns (Qin/Q)^2.
func (c Common) rescale() float64 {
	return estimator.Sq(estimator.Ratio(c.Qin, c.Q))
}

// packing returns the variance of switching the blind rotation output to
// qpk, expressed modulo Q, plus the variance of the scaled packing.
func (c Common) packing(m *estimator.Model, qpk, Bpk uint64) (ms, pk float64) {
	ms = estimator.Sq(estimator.Ratio(c.Q, qpk)) * m.MS(c.Q, qpk, c.RingDim)
	pk = m.PK(c.RingDim, qpk, c.Q, Bpk)
	return
}

// Pipeline is a bootstrapping variant. The set of variants is closed.
type Pipeline interface {
	Kind() Kind
	Params() Common
	// Var returns the output variance modulo Qin without the common tail.
	Var(est *estimator.Estimator) (float64, error)
	sealed()
}

func (Common) sealed() {}

// TotalVar returns the variance of p including the common tail.
func TotalVar(est *estimator.Estimator, p Pipeline) (float64, error) {
	v, err := p.Var(est)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.Kind(), err)
	}

	c := p.Params()

	tail, err := est.CommonPartVar(c.Qin, c.LWEDim, c.Q, c.RingDim, c.QKS, c.BaseKS)
	if err != nil {
		return 0, fmt.Errorf("%s: common part: %w", p.Kind(), err)
	}

	return v + tail, nil
}

// Std returns the standard deviation of p including the common tail.
func Std(est *estimator.Estimator, p Pipeline) (float64, error) {
	v, err := TotalVar(est, p)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// breakdown emits the contributions to the variance before the rescale to Qin
// as an additive budget event and returns their sum.
func breakdown(m *estimator.Model, terms ...estimator.Term) (v float64) {
	for _, t := range terms {
		v += t.Value
	}
	m.Trace("budget", true, terms...)
	return
}

func checkPlaintext(m *estimator.Model, T int) {
	if T < 2 {
		m.Fail(fmt.Errorf("%w: plaintext modulus %d", estimator.ErrInvalidModulus, T))
	}
}
