package main

import (
	"fmt"
	"os"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/search"
)

var (
	EncStd    = 3.19  // Standard deviation of the fresh encryption noise
	NormBound = 6.338 // Tail bound multiplier
	Verbose   = false // Prints the noise budget of every evaluated bootstrapping
)

func main() {

	cfg := estimator.Config{EncStd: EncStd, NormBound: NormBound}

	var tracer estimator.Tracer = estimator.Discard{}
	if Verbose {
		tracer = estimator.NewPrinter(os.Stdout)
	}

	est, err := estimator.NewEstimator(cfg, tracer)
	if err != nil {
		panic(err)
	}

	fmt.Printf("log2(failure probability) = %.2f\n", cfg.LogFailureProbability())

	for _, loop := range search.Loops() {

		fmt.Printf("%s\n", loop.Name)

		e, err := search.Explore(est, search.Setting.Start, search.Setting.Bases, loop.Infeasible)
		if err != nil {
			panic(err)
		}

		for _, s := range e.Steps {
			fmt.Printf("log(q) = %d, log(Bg) = %d\n", s.LogQ, s.LogBaseG)
		}

		fmt.Printf("stop at log(q) = %d\n\n", e.Stop)
	}
}
