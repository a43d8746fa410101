// Package adapter converts the output noise of the bootstrapping pipelines
// into the error of a CKKS value evaluated through them. The CKKS ciphertext
// is first switched to an LWE ciphertext modulo Qin, whose error is given by
// InputErrStd, and the pipeline output modulo QOut is decoded with scale
// DeltaOut.
package adapter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// ErrNoPreset is returned for an LWE dimension without a registered CKKS to
// LWE conversion.
var ErrNoPreset = errors.New("no CKKS input preset")

// Preset are the parameters of the conversion of a CKKS ciphertext to LWE.
type Preset struct {
	// QCKKS is the modulus of the CKKS ciphertext.
	QCKKS uint64
	// NCKKS is the ring degree of the CKKS ciphertext.
	NCKKS int
	// QKS is the key switching modulus.
	QKS uint64
	// BaseKS is the key switching base.
	BaseKS uint64
	// Mult selects the multiplicative key switching.
	Mult bool
}

var presets = map[int]Preset{
	estimator.N35: {QCKKS: 1 << 60, NCKKS: 1 << 16, QKS: 1 << 35, BaseKS: 1 << 12, Mult: true},
	estimator.N25: {QCKKS: 1 << 60, NCKKS: 1 << 16, QKS: 1 << 25, BaseKS: 1 << 5, Mult: true},
	estimator.N20: {QCKKS: 1 << 60, NCKKS: 1 << 16, QKS: 1 << 20, BaseKS: 2, Mult: false},
}

// LookupPreset returns the conversion preset of the LWE dimension n.
func LookupPreset(n int) (Preset, error) {
	p, ok := presets[n]
	if !ok {
		return Preset{}, fmt.Errorf("%w: LWE dimension %d", ErrNoPreset, n)
	}
	return p, nil
}

// InputErrStd returns the standard deviation of the LWE ciphertext of
// dimension n modulo Qin obtained from a CKKS ciphertext of degree Nckks
// modulo Qckks: switch to qks, key switch to dimension n, switch to Qin.
func InputErrStd(est *estimator.Estimator, Qckks uint64, Nckks int, Qin uint64, n int, qks, Bks uint64, mult bool) (float64, error) {
	m := est.Model()

	var ks float64
	if mult {
		ks = m.KSMult(Nckks, qks, Bks)
	} else {
		ks = m.KS(Nckks, qks, Bks)
	}

	msOut := m.MS(qks, Qin, n)

	m.Trace("ckks input", false,
		estimator.Term{Label: "memory (GB)", Value: m.MemKS(n, Nckks, qks, Bks, mult) / (1 << 33)},
		estimator.Term{Label: "final ms", Value: msOut})

	v := estimator.Sq(estimator.Ratio(Qin, qks))*(m.MS(Qckks, qks, Nckks)+ks) + msOut

	return m.Result(math.Sqrt(v))
}

// PresetInputErrStd returns InputErrStd for the preset of the LWE dimension n.
func PresetInputErrStd(est *estimator.Estimator, n int, Qin uint64) (float64, error) {
	p, err := LookupPreset(n)
	if err != nil {
		return 0, err
	}
	return InputErrStd(est, p.QCKKS, p.NCKKS, Qin, n, p.QKS, p.BaseKS, p.Mult)
}
