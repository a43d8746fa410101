package estimator

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// IsPrime reports whether Q is prime.
func IsPrime(Q uint64) bool {
	return ring.IsPrime(Q)
}

// CheckNTTFriendly returns an error if Q is not a prime congruent to 1 modulo
// 2N, i.e. if the ring Z_Q[X]/(X^N+1) does not support the negacyclic NTT used
// by the blind rotation.
func CheckNTTFriendly(N int, Q uint64) error {
	if !IsPowerOfTwo(N) {
		return fmt.Errorf("%w: ring degree %d is not a power of two", ErrInvalidDimension, N)
	}

	if _, err := ring.NewRing(N, []uint64{Q}); err != nil {
		return fmt.Errorf("modulus %d is not NTT friendly for N=%d: %w", Q, N, err)
	}

	return nil
}
