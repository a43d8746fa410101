package estimator

import (
	"math"
)

// VarACC returns the variance added by one blind rotation (accumulator pass)
// of an LWE ciphertext of dimension n into RLWE of degree N, with RGSW keys
// decomposed in base Bg over Q and encrypted with noise std.
//
// Variance: 4 * d_g * Bg^2 * n * N * std^2 / 6, d_g = ceil(log_Bg(Q)).
func VarACC(n, N int, Q, Bg uint64, std float64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dg, err := Digits(Q, Bg)
	if err != nil {
		return 0, err
	}

	B := float64(Bg)
	return float64(4*dg) * B * B * float64(n) * float64(N) * std * std / 6, nil
}

// TimeACC returns a running time proxy of the blind rotation: one NTT-based
// external product per digit per LWE coefficient.
func TimeACC(n, N int, Q, Bg uint64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dg, err := Digits(Q, Bg)
	if err != nil {
		return 0, err
	}

	return float64(2*n*2*(dg+1)*N) * math.Log(float64(N)), nil
}

// MemACC returns the size in bits of the blind rotation key.
func MemACC(n, N int, Q, Bg uint64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dg, err := Digits(Q, Bg)
	if err != nil {
		return 0, err
	}

	return float64(2*n*2*dg*2*N) * math.Log2(float64(Q)), nil
}

// VarKS returns the variance added by switching the key of a ciphertext of
// dimension N to an LWE key, with a table-lookup key switching key in base Bks
// over qks.
//
// Variance: N * d_ks * (1 - 1/Bks) * std^2.
func VarKS(N int, qks, Bks uint64, std float64) (float64, error) {
	if err := checkDimension(N); err != nil {
		return 0, err
	}

	dks, err := Digits(qks, Bks)
	if err != nil {
		return 0, err
	}

	return float64(N*dks) * (1 - 1/float64(Bks)) * std * std, nil
}

// VarKSMult returns the variance of the multiplicative key switching. The
// input ciphertext is close to uniform, hence the digits have variance Bks^2/12.
//
// Variance: N * d_ks * Bks^2 / 12 * std^2.
func VarKSMult(N int, qks, Bks uint64, std float64) (float64, error) {
	if err := checkDimension(N); err != nil {
		return 0, err
	}

	dks, err := Digits(qks, Bks)
	if err != nil {
		return 0, err
	}

	B := float64(Bks)
	return float64(N*dks) * B * B / 12 * std * std, nil
}

// TimeKS returns a running time proxy of the key switching: one addition of
// an LWE ciphertext of dimension n per digit per input coefficient.
func TimeKS(n, N int, qks, Bks uint64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dks, err := Digits(qks, Bks)
	if err != nil {
		return 0, err
	}

	return float64(N * dks * (n + 1)), nil
}

// MemKS returns the size in bits of the table-lookup key switching key.
func MemKS(n, N int, qks, Bks uint64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dks, err := Digits(qks, Bks)
	if err != nil {
		return 0, err
	}

	return float64(N*dks) * float64(Bks-1) * math.Log2(float64(qks)) * float64(n+1), nil
}

// MemKSMult returns the size in bits of the multiplicative key switching key.
func MemKSMult(n, N int, qks, Bks uint64) (float64, error) {
	if err := checkDimensions(n, N); err != nil {
		return 0, err
	}

	dks, err := Digits(qks, Bks)
	if err != nil {
		return 0, err
	}

	return float64(N*dks) * math.Log2(float64(qks)) * float64(n+1), nil
}

// VarMS returns the rounding variance of switching a ciphertext of dimension
// dim from modulus Qfrom to Qto. The rounding error is uniform over a lattice of
// Qfrom/gcd(Qfrom, Qto) points, so VarMS(Q, Q, dim) = 0.
//
// Variance: (1 - (Qfrom/g)^-2) / 12 * (1 + 2*dim/3), g = gcd(Qfrom, Qto).
func VarMS(Qfrom, Qto uint64, dim int) (float64, error) {
	if err := checkModulus(Qfrom); err != nil {
		return 0, err
	}
	if err := checkModulus(Qto); err != nil {
		return 0, err
	}
	if err := checkDimension(dim); err != nil {
		return 0, err
	}

	denom := float64(Qfrom) / float64(gcd(Qfrom, Qto))

	return (1 - 1/(denom*denom)) / 12 * (1 + float64(dim)*2/3), nil
}

// VarPKScaled returns the variance of packing a scaled LWE ciphertext modulo
// qfrom into an RLWE ciphertext of degree N modulo qto, with a packing key in
// base Bpk. Each digit contributes a rounding error and a key error.
//
// Variance: N * d_pk * (1 - 1/Bpk) * (std^2 + 1/12), d_pk = ceil(log_Bpk(qfrom)).
func VarPKScaled(N int, qfrom, qto, Bpk uint64, std float64) (float64, error) {
	if err := checkDimension(N); err != nil {
		return 0, err
	}
	if err := checkModulus(qto); err != nil {
		return 0, err
	}

	dpk, err := Digits(qfrom, Bpk)
	if err != nil {
		return 0, err
	}

	return float64(N*dpk) * (1 - 1/float64(Bpk)) * (std*std + 1.0/12), nil
}

func checkDimensions(n, N int) error {
	if err := checkDimension(n); err != nil {
		return err
	}
	return checkDimension(N)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
