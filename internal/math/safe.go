package math

import (
	"errors"
	"fmt"
	"math/bits"
)

// Arithmetic failure classes. Every pool-relevant computation goes
// through the checked operations below and reports one of these;
// callers match with errors.Is.
var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// CheckedAdd returns a + b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("add %d + %d: %w", a, b, ErrOverflow)
	}
	return sum, nil
}

// CheckedSub returns a - b or ErrUnderflow. Underflow is reported,
// never saturated — callers must be able to tell "legitimately zero"
// from attempted misuse.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("sub %d - %d: %w", a, b, ErrUnderflow)
	}
	return diff, nil
}

// CheckedMul returns a * b or ErrOverflow. The product is formed in
// the 128-bit domain; any high bits mean the result does not fit.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("mul %d * %d: %w", a, b, ErrOverflow)
	}
	return lo, nil
}

// CheckedDiv returns a / b or ErrDivisionByZero.
func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, fmt.Errorf("div %d / 0: %w", a, ErrDivisionByZero)
	}
	return a / b, nil
}
