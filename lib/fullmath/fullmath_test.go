package fullmath

import (
	"fmt"
	"testing"

	ui "github.com/holiman/uint256"

	cons "clmm/lib/constants"
)

func TestMulDivRoundingUp(t *testing.T) {
	tests := [][]uint64{
		{0, 500, 1000000, 0},
		{1, 500, 1000000, 1},
		{1000000, 1, 1000000, 1},
		{1000001, 1, 1000000, 2},
		{7, 3, 2, 11},
	}
	for _, arg := range tests {
		t.Run(fmt.Sprint(arg), func(t *testing.T) {
			result := MulDivRoundingUp(ui.NewInt(arg[0]), ui.NewInt(arg[1]), ui.NewInt(arg[2]))
			if ui.NewInt(arg[3]).Cmp(result) != 0 {
				t.Fatalf("want=%v result=%v", arg[3], result)
			}
		})
	}
}

func TestMulDiv(t *testing.T) {
	tests := [][]uint64{
		{0, 500, 1000000, 0},
		{1000001, 1, 1000000, 1},
		{7, 3, 2, 10},
		{500, 3000, 1000000, 1},
	}
	for _, arg := range tests {
		t.Run(fmt.Sprint(arg), func(t *testing.T) {
			result := MulDiv(ui.NewInt(arg[0]), ui.NewInt(arg[1]), ui.NewInt(arg[2]))
			if ui.NewInt(arg[3]).Cmp(result) != 0 {
				t.Fatalf("want=%v result=%v", arg[3], result)
			}
		})
	}
}

func TestMulDivBig(t *testing.T) {
	// (2^200 * 2^54) / 2^96 == 2^158, exercises the 512-bit intermediate.
	a := new(ui.Int).Lsh(cons.One, 200)
	b := new(ui.Int).Lsh(cons.One, 54)
	want := new(ui.Int).Lsh(cons.One, 158)
	got := MulDiv(a, b, cons.Q96)
	if !got.Eq(want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
}

func TestMulDivOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MulDiv(cons.MaxUint256, cons.MaxUint256, cons.One)
}

func TestDivRoundingUp(t *testing.T) {
	if got := DivRoundingUp(ui.NewInt(10), ui.NewInt(3)); !got.Eq(ui.NewInt(4)) {
		t.Fatalf("want 4 got %v", got)
	}
	if got := DivRoundingUp(ui.NewInt(9), ui.NewInt(3)); !got.Eq(ui.NewInt(3)) {
		t.Fatalf("want 3 got %v", got)
	}
}
