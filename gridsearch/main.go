package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tuneinsight/fdfb-noise-estimator/estimator"
	"github.com/tuneinsight/fdfb-noise-estimator/search"
	"github.com/tuneinsight/fdfb-noise-estimator/stats"
)

var (
	Qin       = uint64(1 << 11)   // Input modulus of the bootstrapping
	LWEDim    = 1305              // LWE dimension
	RingDim   = 1 << 10           // RLWE ring degree
	Q         = uint64(1<<27 - 1) // Blind rotation modulus
	MaxLogQKS = 35                // Log2 of the largest key switching modulus
	Target    = 128.0             // Largest acceptable bound, 0 to disable
)

func main() {

	est, err := estimator.NewEstimator(estimator.DefaultConfig(), nil)
	if err != nil {
		panic(err)
	}

	grid := search.Grid{
		Qin:       Qin,
		LWEDim:    LWEDim,
		RingDim:   RingDim,
		Q:         Q,
		MaxLogQKS: MaxLogQKS,
		Target:    Target,
	}

	bands, err := grid.Run(est)
	if err != nil {
		panic(err)
	}

	now := time.Now().Unix()

	f, err := os.Create(fmt.Sprintf("grid_%d_%d_%d.csv", LWEDim, RingDim, now))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if err := search.WriteCSV(f, bands); err != nil {
		panic(err)
	}

	g, err := os.Create(fmt.Sprintf("grid_stats_%d_%d_%d.csv", LWEDim, RingDim, now))
	if err != nil {
		panic(err)
	}
	defer g.Close()

	w := csv.NewWriter(g)

	// CSV Header
	if err := w.Write(append([]string{"LogQks", "LogBks"}, stats.Header...)); err != nil {
		panic(err)
	}

	for _, b := range bands {

		s := stats.NewBoundStats()
		s.Update(b.Bounds()...)

		if err := s.Finalize(); err != nil {
			panic(err)
		}

		fmt.Printf("log(qks) = %d, log(Bks) = %d: %s\n", b.LogQKS, b.LogBaseKS, s)

		if err := w.Write(append([]string{strconv.Itoa(b.LogQKS), strconv.Itoa(b.LogBaseKS)}, s.ToCSV()...)); err != nil {
			panic(err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		panic(err)
	}

	best, ok := search.Fastest(bands)
	if !ok {
		fmt.Printf("no parameters below %.2f\n", Target)
		return
	}

	fmt.Printf("fastest: log(Bg) = %d, log(qks) = %d, log(Bks) = %d, std = %.5f, bound = %.5f, time = %.5e\n",
		best.LogBaseG, best.LogQKS, best.LogBaseKS, best.Std, best.Bound, best.ACC.Time)
}
