package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Named moduli of the benchmark parameter sets. Q53 and P53 are NTT-friendly
// for N = 2^11, Q26 and P26 for N = 2^10.
const (
	Q53 uint64 = 9007199254614017
	P53 uint64 = 9007199254781953
	Q26 uint64 = 67104769
	P26 uint64 = 67127297
)

// LWE dimensions of the standard (N35) and small (N25, N20) parameter sets.
const (
	N35 = 1340
	N25 = 955
	N20 = 760
)

// Config holds the two global constants of the noise model.
type Config struct {
	// EncStd is the standard deviation of fresh encryption noise.
	EncStd float64
	// NormBound converts a standard deviation into a high-probability bound.
	NormBound float64
}

// DefaultConfig returns the configuration used by all the drivers.
func DefaultConfig() Config {
	return Config{
		EncStd:    3.19,
		NormBound: 6.338,
	}
}

// Validate checks that both constants are finite and positive.
func (c Config) Validate() error {
	if !(c.EncStd > 0) || math.IsInf(c.EncStd, 0) {
		return fmt.Errorf("invalid config: EncStd must be positive and finite but is %f", c.EncStd)
	}
	if !(c.NormBound > 0) || math.IsInf(c.NormBound, 0) {
		return fmt.Errorf("invalid config: NormBound must be positive and finite but is %f", c.NormBound)
	}
	return nil
}

// Bound returns std * NormBound.
func (c Config) Bound(std float64) float64 {
	return std * c.NormBound
}

// LogFailureProbability returns log2 of the probability that a centered
// Gaussian exceeds NormBound standard deviations in absolute value.
func (c Config) LogFailureProbability() float64 {
	return math.Log2(2 * distuv.UnitNormal.Survival(c.NormBound))
}
