// Package paramsets lists the parameter sets of the functional bootstrapping
// benchmarks and evaluates their noise.
package paramsets

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/pipeline"
)

// ErrUnknownSet is returned by Lookup for an unknown name.
var ErrUnknownSet = errors.New("unknown parameter set")

// ParamSet is a named pipeline with plaintext modulus T.
type ParamSet struct {
	Name     string
	T        int
	Pipeline pipeline.Pipeline
}

// Result is the noise of a parameter set modulo its Qin.
type Result struct {
	Name string
	Kind pipeline.Kind
	// Core is the variance of the pipeline without the common tail.
	Core float64
	// Tail is the variance of the common key switching and modulus switching.
	Tail  float64
	Std   float64
	Bound float64
}

// Evaluate returns the noise of s.
func (s ParamSet) Evaluate(est *estimator.Estimator) (r Result, err error) {

	r.Name = s.Name
	r.Kind = s.Pipeline.Kind()

	if r.Core, err = s.Pipeline.Var(est); err != nil {
		return r, fmt.Errorf("%s: %w", s.Name, err)
	}

	c := s.Pipeline.Params()

	if r.Tail, err = est.CommonPartVar(c.Qin, c.LWEDim, c.Q, c.RingDim, c.QKS, c.BaseKS); err != nil {
		return r, fmt.Errorf("%s: %w", s.Name, err)
	}

	r.Std = math.Sqrt(r.Core + r.Tail)
	r.Bound = est.Bound(r.Std)

	return
}

// Lookup returns the parameter set of the given name.
func Lookup(name string) (ParamSet, error) {
	for _, s := range All() {
		if s.Name == name {
			return s, nil
		}
	}
	return ParamSet{}, fmt.Errorf("%w: %q", ErrUnknownSet, name)
}

// All returns the standard, small and tiny parameter sets.
func All() (sets []ParamSet) {
	sets = append(sets, Standard...)
	sets = append(sets, Small...)
	return append(sets, Tiny...)
}

// common returns the parameters of the benchmarks, which all key switch
// modulo 2^20 in base 2^5.
func common(n, N int, Qin, Q, Bg uint64) pipeline.Common {
	return pipeline.Common{
		Qin:     Qin,
		LWEDim:  n,
		Q:       Q,
		RingDim: N,
		BaseG:   Bg,
		QKS:     1 << 20,
		BaseKS:  1 << 5,
	}
}

func standard(Qin, Bg uint64) pipeline.Common {
	return common(estimator.N35, 1<<11, Qin, estimator.Q53, Bg)
}

func small(n int, Qin, Bg uint64) pipeline.Common {
	return common(n, 1<<11, Qin, estimator.Q53, Bg)
}

func tiny(Bg uint64) pipeline.Common {
	return common(estimator.N20, 1<<10, 1<<11, estimator.Q26, Bg)
}

func withQKS(c pipeline.Common, qks uint64) pipeline.Common {
	c.QKS = qks
	return c
}

func packing(qpk uint64) pipeline.Packing {
	return pipeline.Packing{QPK: qpk, BasePK: 1 << 5}
}

func wop(c pipeline.Common, T int, qpk uint64, pieces int) pipeline.WoP {
	return pipeline.WoP{
		Common:  c,
		Packing: packing(qpk),
		T:       T,
		P:       estimator.P53,
		BaseRL:  1 << 27,
		Pieces:  pieces,
	}
}

func ks21(c pipeline.Common, qpk, Bg1 uint64) pipeline.DecompQ {
	return pipeline.DecompQ{Common: c, Packing: packing(qpk), BaseG1: Bg1}
}

// Standard are the parameter sets with LWE dimension N35.
var Standard = []ParamSet{
	{"standard/EvalFunc/p8", 8, pipeline.PlainBootstrap{Common: standard(1<<11, 1<<27)}},

	{"standard/KS21/p32/Bg18", 32, ks21(standard(1<<12, 1<<18), 1<<30, 1<<6)},
	{"standard/KS21/p32/Bg14", 32, ks21(standard(1<<12, 1<<14), 1<<35, 1<<10)},
	{"standard/KS21/p32/Bg11", 32, ks21(standard(1<<12, 1<<11), 1<<35, 1<<13)},
	{"standard/KS21/p16/Bg18", 16, ks21(standard(1<<12, 1<<18), 1<<30, 1<<8)},
	{"standard/KS21/p16/Bg14", 16, ks21(standard(1<<12, 1<<14), 1<<35, 1<<12)},
	{"standard/KS21/p16/Bg11", 16, ks21(standard(1<<12, 1<<11), 1<<35, 1<<15)},

	{"standard/Comp/p32", 32, pipeline.CompBootstrap{Common: standard(1<<12, 1<<27)}},
	{"standard/Comp/p16", 16, pipeline.CompBootstrap{Common: standard(1<<12, 1<<27)}},
	{"standard/Comp-MV/p32", 32, pipeline.CompBootstrapMV{Common: standard(1<<12, 1<<18), T: 32}},
	{"standard/Comp-MV/p16", 16, pipeline.CompBootstrapMV{Common: withQKS(standard(1<<12, 1<<27), 1<<25), T: 16}},

	{"standard/WoPPBS1/p16", 16, pipeline.WoPBootstrapOld{WoP: wop(standard(1<<11, 1<<18), 16, 1<<30, 1)}},
	{"standard/WoPPBS1-MV/p16", 16, pipeline.WoPBootstrapMVOld{WoP: wop(standard(1<<11, 1<<11), 16, 1<<30, 1)}},
	{"standard/WoPPBS2/p32", 32, pipeline.WoPBootstrapOld{WoP: wop(standard(1<<12, 1<<14), 32, 1<<30, 2)}},
	{"standard/WoPPBS2/p16", 16, pipeline.WoPBootstrapOld{WoP: wop(standard(1<<12, 1<<18), 16, 1<<30, 2)}},
	{"standard/WoPPBS2-MV/p32", 32, pipeline.WoPBootstrapMVOld{WoP: wop(standard(1<<12, 1<<6), 32, 1<<30, 2)}},
	{"standard/WoPPBS2-MV/p16", 16, pipeline.WoPBootstrapMVOld{WoP: wop(standard(1<<12, 1<<11), 16, 1<<30, 2)}},
	{"standard/WoPPBS1+/p16", 16, pipeline.WoPBootstrap{WoP: wop(standard(1<<11, 1<<18), 16, 1<<25, 1)}},
	{"standard/WoPPBS1+-MV/p16", 16, pipeline.WoPBootstrapMV{WoP: wop(standard(1<<11, 1<<18), 16, 1<<25, 1)}},
	{"standard/BFVMul/p32", 32, pipeline.WoPBootstrap{WoP: wop(standard(1<<12, 1<<18), 32, 1<<25, 2)}},
	{"standard/BFVMul-MV/p32", 32, pipeline.WoPBootstrapMV{WoP: wop(standard(1<<12, 1<<11), 32, 1<<25, 2)}},
	{"standard/BFVMul-MV/p16", 16, pipeline.WoPBootstrapMV{WoP: wop(standard(1<<12, 1<<18), 16, 1<<25, 2)}},

	{"standard/Compress/p16", 16, pipeline.PlainBootstrap{Common: standard(1<<12, 1<<27)}},
	{"standard/CancelSign/p16", 16, pipeline.CancelSignBootstrap{Common: standard(1<<11, 1<<27), Packing: packing(1 << 15)}},
	{"standard/Select/p32", 32, pipeline.SelectBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"standard/Select/p16", 16, pipeline.SelectBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"standard/Select-MV/p32", 32, pipeline.SelectBootstrapMV{Common: standard(1<<12, 1<<18), Packing: packing(1 << 15), T: 32, BaseMV: 64}},
	{"standard/Select-MV/p16", 16, pipeline.SelectBootstrapMV{Common: standard(1<<12, 1<<18), Packing: packing(1 << 15), T: 16, BaseMV: 32}},
	{"standard/PreSelect/p32", 32, pipeline.PreSelectBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 20), T: 32, BaseMV: 2}},
	{"standard/PreSelect/p16", 16, pipeline.PreSelectBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 20), T: 16, BaseMV: 4}},
	{"standard/SelectAlt/p32", 32, pipeline.SelectAltBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"standard/SelectAlt/p16", 16, pipeline.SelectAltBootstrap{Common: standard(1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"standard/SelectAlt-MV/p32", 32, pipeline.SelectAltBootstrapMV{Common: standard(1<<12, 1<<18), Packing: packing(1 << 15), T: 32}},
	{"standard/SelectAlt-MV/p16", 16, pipeline.SelectAltBootstrapMV{Common: standard(1<<12, 1<<18), Packing: packing(1 << 15), T: 16}},
}

// Small are the parameter sets with LWE dimensions N25 and N20.
var Small = []ParamSet{
	{"small/EvalFunc/p16", 16, pipeline.PlainBootstrap{Common: small(estimator.N20, 1<<11, 1<<27)}},

	{"small/KS21/p32/Bg18", 32, ks21(small(estimator.N20, 1<<12, 1<<18), 1<<30, 1<<7)},
	{"small/KS21/p16/Bg18", 16, ks21(small(estimator.N20, 1<<12, 1<<18), 1<<30, 1<<9)},

	{"small/Comp/p32", 32, pipeline.CompBootstrap{Common: small(estimator.N20, 1<<12, 1<<27)}},
	{"small/Comp-MV/p32", 32, pipeline.CompBootstrapMV{Common: small(estimator.N20, 1<<12, 1<<18), T: 32}},

	{"small/WoPPBS1/p16", 16, pipeline.WoPBootstrapOld{WoP: wop(small(estimator.N20, 1<<11, 1<<18), 16, 1<<30, 1)}},
	{"small/WoPPBS2/p32", 32, pipeline.WoPBootstrapOld{WoP: wop(small(estimator.N20, 1<<12, 1<<14), 32, 1<<30, 2)}},
	{"small/WoPPBS1+/p16", 16, pipeline.WoPBootstrap{WoP: wop(small(estimator.N25, 1<<11, 1<<18), 16, 1<<20, 1)}},
	{"small/BFVMul/p32", 32, pipeline.WoPBootstrap{WoP: wop(small(estimator.N25, 1<<12, 1<<18), 32, 1<<25, 2)}},

	{"small/Compress/p16", 16, pipeline.PlainBootstrap{Common: small(estimator.N20, 1<<12, 1<<27)}},
	{"small/CancelSign/p16", 16, pipeline.CancelSignBootstrap{Common: small(estimator.N20, 1<<11, 1<<27), Packing: packing(1 << 15)}},
	{"small/Select/p32", 32, pipeline.SelectBootstrap{Common: small(estimator.N20, 1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"small/Select-MV/p32", 32, pipeline.SelectBootstrapMV{Common: small(estimator.N20, 1<<12, 1<<18), Packing: packing(1 << 15), T: 32, BaseMV: 64}},
	{"small/PreSelect/p32", 32, pipeline.PreSelectBootstrap{Common: small(estimator.N20, 1<<12, 1<<27), Packing: packing(1 << 20), T: 32, BaseMV: 8}},
	{"small/SelectAlt/p32", 32, pipeline.SelectAltBootstrap{Common: small(estimator.N20, 1<<12, 1<<27), Packing: packing(1 << 15)}},
	{"small/SelectAlt-MV/p32", 32, pipeline.SelectAltBootstrapMV{Common: small(estimator.N20, 1<<12, 1<<18), Packing: packing(1 << 15), T: 32}},
}

// Tiny are the parameter sets with ring degree 2^10 and modulus Q26.
var Tiny = []ParamSet{
	{"tiny/Comp/p16", 16, pipeline.CompBootstrap{Common: tiny(1 << 5)}},
	{"tiny/Select/p16", 16, pipeline.SelectBootstrap{Common: tiny(1 << 5), Packing: packing(1 << 15)}},
	{"tiny/SelectAlt/p16", 16, pipeline.SelectAltBootstrap{Common: tiny(1 << 4), Packing: packing(1 << 15)}},
}
