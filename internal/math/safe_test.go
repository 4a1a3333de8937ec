package math_test

import (
	"errors"
	stdmath "math"
	"testing"

	"PredictLedger/internal/math"
)

// ==== Checked uint64 operations ====

func TestCheckedAdd(t *testing.T) {
	sum, err := math.CheckedAdd(1_000_000, 99_750)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 1_099_750 {
		t.Errorf("got %d, want 1099750", sum)
	}

	_, err = math.CheckedAdd(stdmath.MaxUint64, 1)
	if !errors.Is(err, math.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestCheckedSub(t *testing.T) {
	diff, err := math.CheckedSub(1_000_000, 90_701)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != 909_299 {
		t.Errorf("got %d, want 909299", diff)
	}

	// Zero is legitimate, not an underflow.
	zero, err := math.CheckedSub(42, 42)
	if err != nil || zero != 0 {
		t.Errorf("got (%d, %v), want (0, nil)", zero, err)
	}

	_, err = math.CheckedSub(1, 2)
	if !errors.Is(err, math.ErrUnderflow) {
		t.Errorf("got %v, want ErrUnderflow", err)
	}
}

func TestCheckedMul(t *testing.T) {
	product, err := math.CheckedMul(1_000_000, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product != 1_000_000_000_000 {
		t.Errorf("got %d, want 1000000000000", product)
	}

	_, err = math.CheckedMul(stdmath.MaxUint64, 2)
	if !errors.Is(err, math.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestCheckedDiv(t *testing.T) {
	q, err := math.CheckedDiv(1_000_000_000_000, 1_099_750)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != 909_297 {
		t.Errorf("got %d, want 909297", q)
	}

	_, err = math.CheckedDiv(1, 0)
	if !errors.Is(err, math.ErrDivisionByZero) {
		t.Errorf("got %v, want ErrDivisionByZero", err)
	}
}

// ==== 128-bit domain ====

func TestMulDivFullWidth(t *testing.T) {
	// max64 * max64 / max64 overflows a bare 64-bit multiply but is
	// exact in the widened domain.
	max := uint64(stdmath.MaxUint64)
	got, err := math.MulDiv(max, max, max, math.RoundDown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != max {
		t.Errorf("got %d, want %d", got, max)
	}
}

func TestMulDivRounding(t *testing.T) {
	down, err := math.MulDiv(7, 3, 2, math.RoundDown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if down != 10 {
		t.Errorf("RoundDown: got %d, want 10", down)
	}

	up, err := math.MulDiv(7, 3, 2, math.RoundUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up != 11 {
		t.Errorf("RoundUp: got %d, want 11", up)
	}

	// Exact division rounds the same both ways.
	exact, err := math.MulDiv(10, 3, 5, math.RoundUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exact != 6 {
		t.Errorf("exact: got %d, want 6", exact)
	}
}

func TestMulDivErrors(t *testing.T) {
	_, err := math.MulDiv(1, 1, 0, math.RoundDown)
	if !errors.Is(err, math.ErrDivisionByZero) {
		t.Errorf("got %v, want ErrDivisionByZero", err)
	}

	// Quotient exceeding uint64 must be rejected, not truncated.
	max := uint64(stdmath.MaxUint64)
	_, err = math.MulDiv(max, max, 1, math.RoundDown)
	if !errors.Is(err, math.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

// ==== Fee split ====

func TestFeeSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		rateBps uint64
		fee     uint64
		net     uint64
	}{
		{"reference bet", 100_000, 25, 250, 99_750},
		{"ceil on remainder", 999, 25, 3, 996},
		{"one percent", 100_000, 100, 1_000, 99_000},
		{"tiny amount still charged", 1, 25, 1, 0},
		{"zero rate", 100_000, 0, 0, 100_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net, err := math.FeeSplit(tt.amount, tt.rateBps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fee != tt.fee || net != tt.net {
				t.Errorf("got (fee=%d, net=%d), want (fee=%d, net=%d)",
					fee, net, tt.fee, tt.net)
			}
		})
	}
}

func TestFeeSplitNeverUnderCollects(t *testing.T) {
	for amount := uint64(1); amount < 5_000; amount++ {
		fee, net, err := math.FeeSplit(amount, 25)
		if err != nil {
			t.Fatalf("amount %d: unexpected error: %v", amount, err)
		}
		if fee+net != amount {
			t.Fatalf("amount %d: fee %d + net %d != amount", amount, fee, net)
		}
		// fee * 10000 >= amount * 25 (ceil never rounds down)
		if fee*math.BpsDenominator < amount*25 {
			t.Fatalf("amount %d: fee %d under-collects", amount, fee)
		}
	}
}
