package estimator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidBase is returned for a decomposition base smaller than 2.
	ErrInvalidBase = errors.New("invalid base: must be greater than 1")
	// ErrInvalidModulus is returned for a zero modulus.
	ErrInvalidModulus = errors.New("invalid modulus: must be positive")
	// ErrInvalidDimension is returned for a non-positive dimension.
	ErrInvalidDimension = errors.New("invalid dimension: must be positive")
)

// Digits returns the number of base-B digits of the gadget decomposition of
// the modulus M, that is the smallest d >= 1 such that B^d >= M.
func Digits(M, B uint64) (d int, err error) {
	if err = checkModulus(M); err != nil {
		return
	}
	if err = checkBase(B); err != nil {
		return
	}

	d = 1
	for x := B; x < M; d++ {
		hi, lo := bits.Mul64(x, B)
		if hi != 0 {
			// B^(d+1) overflows and is thus larger than any uint64 M.
			return d + 1, nil
		}
		x = lo
	}

	return
}

// IsPowerOfTwo reports whether x is a positive power of two.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// CeilLog2 returns ceil(log2(x)) for x >= 1.
func CeilLog2(x uint64) int {
	return bits.Len64(x - 1)
}

// FloorLog2 returns floor(log2(x)) for x >= 1.
func FloorLog2(x uint64) int {
	return bits.Len64(x) - 1
}

// Log2 returns log2(x) as a float64.
func Log2[T constraints.Integer | constraints.Float](x T) float64 {
	return math.Log2(float64(x))
}

func checkBase(B uint64) error {
	if B <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBase, B)
	}
	return nil
}

func checkModulus(Q uint64) error {
	if Q == 0 {
		return ErrInvalidModulus
	}
	return nil
}

func checkDimension(N int) error {
	if N <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, N)
	}
	return nil
}

// Ratio returns a/b as a real number.
func Ratio(a, b uint64) float64 {
	return float64(a) / float64(b)
}

// Sq returns x*x.
func Sq(x float64) float64 {
	return x * x
}
