// Package search explores the parameter space of the bootstrapping. Grid
// enumerates all power-of-two bases and key switching moduli of a plain
// bootstrapping; Explore selects, for growing input moduli, the largest
// gadget base that keeps a criterion feasible.
package search

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
)

// Grid is the parameter space of a plain bootstrapping with input modulus
// Qin, LWE dimension LWEDim, ring degree RingDim and modulus Q. The key
// switching modulus ranges over 2^floor(log2(Qin)) to 2^MaxLogQKS.
type Grid struct {
	Qin       uint64
	LWEDim    int
	RingDim   int
	Q         uint64
	MaxLogQKS int
	// Target is the largest acceptable bound, 0 disables the check.
	Target float64
}

// ACCCost is the cost of the blind rotation for a given gadget base.
type ACCCost struct {
	Var  float64
	Time float64
	Mem  float64
}

// GridResult is the evaluation of one point of the grid.
type GridResult struct {
	LogBaseG  int
	LogQKS    int
	LogBaseKS int
	ACC       ACCCost
	Std       float64
	Bound     float64
	// Pass reports whether Bound is at most the target of the grid, it is
	// always true without target.
	Pass bool
}

// Band groups the results sharing the same key switching parameters.
type Band struct {
	LogQKS    int
	LogBaseKS int
	Results   []GridResult
}

// Bounds returns the bounds of the results of the band.
func (b Band) Bounds() (bounds []float64) {
	bounds = make([]float64, len(b.Results))
	for i := range b.Results {
		bounds[i] = b.Results[i].Bound
	}
	return
}

func (g Grid) validate() error {
	if g.Qin == 0 || g.Q == 0 {
		return fmt.Errorf("%w: Qin=%d, Q=%d", estimator.ErrInvalidModulus, g.Qin, g.Q)
	}
	if g.LWEDim <= 0 || g.RingDim <= 0 {
		return fmt.Errorf("%w: n=%d, N=%d", estimator.ErrInvalidDimension, g.LWEDim, g.RingDim)
	}
	if g.MaxLogQKS > 63 {
		return fmt.Errorf("%w: 2^%d", estimator.ErrInvalidModulus, g.MaxLogQKS)
	}
	if g.MaxLogQKS < estimator.FloorLog2(g.Qin) {
		return fmt.Errorf("%w: qks=2^%d < Qin=%d", estimator.ErrInvalidModulus, g.MaxLogQKS, g.Qin)
	}
	return nil
}

// costs returns the blind rotation cost of each gadget base 2^1 to
// 2^ceil(ceil(log2(Q))/2), indexed by log2 of the base minus one.
func (g Grid) costs(est *estimator.Estimator) (costs []ACCCost, err error) {

	costs = make([]ACCCost, (estimator.CeilLog2(g.Q)+1)>>1)

	for i := range costs {

		Bg := uint64(1) << (i + 1)

		if costs[i].Var, err = estimator.VarACC(g.LWEDim, g.RingDim, g.Q, Bg, est.EncStd); err != nil {
			return
		}

		if costs[i].Time, err = estimator.TimeACC(g.LWEDim, g.RingDim, g.Q, Bg); err != nil {
			return
		}

		if costs[i].Mem, err = estimator.MemACC(g.LWEDim, g.RingDim, g.Q, Bg); err != nil {
			return
		}
	}

	return
}

// Run evaluates the grid. The bands are ordered by key switching modulus,
// then base; the results of a band by gadget base.
func (g Grid) Run(est *estimator.Estimator) (bands []Band, err error) {

	if err = g.validate(); err != nil {
		return
	}

	costs, err := g.costs(est)
	if err != nil {
		return
	}

	m := est.Model()

	for logQKS := estimator.FloorLog2(g.Qin); logQKS <= g.MaxLogQKS; logQKS++ {

		qks := uint64(1) << logQKS

		// The final modulus switch does not depend on the bases.
		msOut := m.MS(qks, g.Qin, g.LWEDim)

		for logBks := 1; logBks <= (logQKS+1)>>1; logBks++ {

			ks := m.MS(g.Q, qks, g.RingDim) + m.KS(g.RingDim, qks, uint64(1)<<logBks)

			band := Band{
				LogQKS:    logQKS,
				LogBaseKS: logBks,
				Results:   make([]GridResult, len(costs)),
			}

			for i, c := range costs {
				v := c.Var*estimator.Sq(estimator.Ratio(qks, g.Q)) + ks
				std := math.Sqrt(v*estimator.Sq(estimator.Ratio(g.Qin, qks)) + msOut)
				bound := est.Bound(std)

				band.Results[i] = GridResult{
					LogBaseG:  i + 1,
					LogQKS:    logQKS,
					LogBaseKS: logBks,
					ACC:       c,
					Std:       std,
					Bound:     bound,
					Pass:      g.Target == 0 || bound <= g.Target,
				}
			}

			bands = append(bands, band)
		}
	}

	if err = m.Err(); err != nil {
		return nil, err
	}

	return
}

// Fastest returns the passing result with the smallest blind rotation time.
func Fastest(bands []Band) (best GridResult, ok bool) {

	var results []GridResult
	var times []float64

	for _, b := range bands {
		for _, r := range b.Results {
			if r.Pass {
				results = append(results, r)
				times = append(times, r.ACC.Time)
			}
		}
	}

	if len(results) == 0 {
		return
	}

	return results[floats.MinIdx(times)], true
}
