package main

import (
	"fmt"
	"math"
	"os"

	"github.com/tuneinsight/fdfb-noise-estimator/adapter"
	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/paramsets"
)

var (
	Verbose = false // Prints the noise budget of every parameter set
	Check   = true  // Checks that the named moduli are NTT-friendly
)

func main() {

	var tracer estimator.Tracer = estimator.Discard{}
	if Verbose {
		tracer = estimator.NewPrinter(os.Stdout)
	}

	est, err := estimator.NewEstimator(estimator.DefaultConfig(), tracer)
	if err != nil {
		panic(err)
	}

	if Check {
		for _, m := range []struct {
			N int
			Q uint64
		}{
			{1 << 11, estimator.Q53},
			{1 << 11, estimator.P53},
			{1 << 10, estimator.Q26},
			{1 << 10, estimator.P26},
		} {
			if err := estimator.CheckNTTFriendly(m.N, m.Q); err != nil {
				panic(err)
			}
		}
	}

	fmt.Printf("%-28s %-18s %12s %12s %10s %10s\n", "set", "kind", "core", "tail", "std", "bound")

	for _, s := range paramsets.All() {

		r, err := s.Evaluate(est)
		if err != nil {
			panic(err)
		}

		fmt.Printf("%-28s %-18s %12.5f %12.5f %10.5f %10.5f\n", r.Name, r.Kind, r.Core, r.Tail, r.Std, r.Bound)
	}

	fmt.Println()

	for _, s := range paramsets.CKKS {

		std, err := s.Evaluate(est)
		if err != nil {
			panic(err)
		}

		fmt.Printf("%-28s std = %.5e, std (total) = %.5e, log2(bound) = %.2f\n",
			s.Name, std.Pipeline, std.Total, math.Log2(std.Bound(est.Config)))
	}

	fmt.Println()

	for _, n := range []int{estimator.N35, estimator.N25, estimator.N20} {
		for _, Qin := range []uint64{1 << 11, 1 << 12} {

			std, err := adapter.PresetInputErrStd(est, n, Qin)
			if err != nil {
				panic(err)
			}

			fmt.Printf("input error: n = %d, Qin = %d, std = %.5f\n", n, Qin, std)
		}
	}
}
