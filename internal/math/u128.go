package math

import (
	"fmt"
	"math/big"
	"sync"
)

type RoundingMode int

const (
	RoundDown RoundingMode = iota // truncate toward zero (default)
	RoundUp                       // away from zero on any remainder
)

// maxUint64 as a big.Int, for narrowing checks.
var bigMaxUint64 = new(big.Int).SetUint64(^uint64(0))

// Pooled big.Int for 128-bit intermediates. The widened domain is the
// whole point: two full-width liquidity values are always multiplied
// here, never with a bare 64-bit multiply.
var int128Pool = &sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

func getInt128() *big.Int {
	return int128Pool.Get().(*big.Int)
}

func putInt128(v *big.Int) {
	v.SetUint64(0) // Clear before returning to pool
	int128Pool.Put(v)
}

// MulU128 performs a * b in the 128-bit domain. The caller must
// release the result with PutU128 when done.
func MulU128(a, b uint64) *big.Int {
	result := getInt128()
	x := getInt128().SetUint64(a)
	y := getInt128().SetUint64(b)
	result.Mul(x, y)
	putInt128(x)
	putInt128(y)
	return result
}

// PutU128 returns an intermediate obtained from MulU128 to the pool.
func PutU128(v *big.Int) {
	putInt128(v)
}

// DivU128 divides a 128-bit numerator by a 64-bit denominator and
// narrows back to uint64 with an explicit range check.
func DivU128(numerator *big.Int, denominator uint64, mode RoundingMode) (uint64, error) {
	if denominator == 0 {
		return 0, fmt.Errorf("div128 %s / 0: %w", numerator, ErrDivisionByZero)
	}

	denom := getInt128().SetUint64(denominator)
	quotient := getInt128()
	remainder := getInt128()
	quotient.QuoRem(numerator, denom, remainder)

	if mode == RoundUp && remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}

	var err error
	var result uint64
	if quotient.Cmp(bigMaxUint64) > 0 {
		err = fmt.Errorf("div128 %s / %d: result exceeds uint64: %w", numerator, denominator, ErrOverflow)
	} else {
		result = quotient.Uint64()
	}

	putInt128(denom)
	putInt128(quotient)
	putInt128(remainder)

	return result, err
}

// MulDiv computes a * b / c with the product held in the 128-bit
// domain. This is the single authoritative muldiv both the settlement
// path and the preview path call through.
func MulDiv(a, b, c uint64, mode RoundingMode) (uint64, error) {
	product := MulU128(a, b)
	result, err := DivU128(product, c, mode)
	PutU128(product)
	return result, err
}
