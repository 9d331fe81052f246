package field

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	tests := []struct {
		a, b uint64
	}{
		{0, 0},
		{1, 1},
		{0xFFFFFFFFFFFFFFFF, 5},
		{1 << 63, 1 << 63},
	}
	for _, tc := range tests {
		a := FromUint64(tc.a)
		b := FromUint64(tc.b)
		sum := a.Add(b)
		back := sum.Sub(b)
		if !back.Equal(a) {
			t.Errorf("Add/Sub round trip failed for a=%d b=%d: got %s want %s", tc.a, tc.b, back, a)
		}
	}
}

func TestMulZero(t *testing.T) {
	a := FromUint64(12345)
	if !a.Mul(Zero()).IsZero() {
		t.Error("a * 0 should be zero")
	}
}

func TestNegIsInverseOfAdd(t *testing.T) {
	a := FromUint64(999)
	if !a.Add(a.Neg()).IsZero() {
		t.Error("a + (-a) should be zero")
	}
}

func TestBool(t *testing.T) {
	if !Bool(true).Equal(One()) {
		t.Error("Bool(true) should equal One()")
	}
	if !Bool(false).Equal(Zero()) {
		t.Error("Bool(false) should equal Zero()")
	}
}

func TestFromInt64Negative(t *testing.T) {
	neg := FromInt64(-1)
	if neg.IsZero() {
		t.Error("-1 should not reduce to zero")
	}
	// -1 + 1 == 0
	if !neg.Add(One()).IsZero() {
		t.Error("-1 + 1 should be zero")
	}
}
