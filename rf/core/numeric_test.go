package core

import (
	"math"
	"testing"
)

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestKMPerDeg(t *testing.T) {
	if !NearlyEqual(KMPerDeg, 111.19492664455873, 1e-12) {
		t.Fatalf("KMPerDeg = %v", KMPerDeg)
	}
}

func TestIsClose(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{name: "equal", a: 6.5, b: 6.5, want: true},
		{name: "within rtol", a: 6.5, b: 6.505, want: true},
		{name: "outside rtol", a: 6.5, b: 6.52, want: false},
		{name: "within atol near zero", a: 0, b: 5e-5, want: true},
		{name: "nan", a: math.NaN(), b: math.NaN(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClose(tt.a, tt.b, 1e-3, 1e-4); got != tt.want {
				t.Fatalf("IsClose(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAllClosePairwise(t *testing.T) {
	if !AllClosePairwise(nil, 1e-3, 1e-4) {
		t.Fatal("empty slice should be consistent")
	}
	if !AllClosePairwise([]float64{6.5, 6.5001, 6.4999}, 1e-3, 1e-4) {
		t.Fatal("expected consistent values")
	}
	if AllClosePairwise([]float64{6.5, 6.5001, 5.8}, 1e-3, 1e-4) {
		t.Fatal("expected outlier to be detected")
	}
}

func TestSignedNthRootIdentity(t *testing.T) {
	for _, x := range []float64{-3.5, -1, -1e-9, 0, 1e-9, 0.25, 7} {
		if got := SignedNthRoot(x, 1); got != x {
			t.Fatalf("SignedNthRoot(%v, 1) = %v", x, got)
		}
		if got := SignedNthPower(x, 1); got != x {
			t.Fatalf("SignedNthPower(%v, 1) = %v", x, got)
		}
	}
}

func TestSignedNthRootSign(t *testing.T) {
	for _, n := range []float64{2, 3, 4, 5} {
		for _, x := range []float64{-8, -0.5, -1e-6} {
			r := SignedNthRoot(x, n)
			if math.IsNaN(r) || r >= 0 {
				t.Fatalf("SignedNthRoot(%v, %v) = %v, want negative real", x, n, r)
			}
			back := SignedNthPower(r, n)
			if !NearlyEqual(back, x, 1e-12) {
				t.Fatalf("round trip of %v with n=%v gave %v", x, n, back)
			}
		}
	}

	if got := SignedNthRoot(-8, 3); !NearlyEqual(got, -2, 1e-15) {
		t.Fatalf("SignedNthRoot(-8, 3) = %v, want -2", got)
	}
	if got := SignedNthPower(-2, 2); got != -4 {
		t.Fatalf("SignedNthPower(-2, 2) = %v, want -4", got)
	}
}

func TestSignedNthRootNaN(t *testing.T) {
	if !math.IsNaN(SignedNthRoot(math.NaN(), 2)) {
		t.Fatal("expected NaN to propagate through root")
	}
	if !math.IsNaN(SignedNthPower(math.NaN(), 2)) {
		t.Fatal("expected NaN to propagate through power")
	}
}

func TestSignedNthBlocks(t *testing.T) {
	buf := []float64{-16, 0, 81, math.NaN()}
	SignedNthRootBlock(buf, 4)

	want := []float64{-2, 0, 3}
	for i, w := range want {
		if !NearlyEqual(buf[i], w, 1e-12) {
			t.Fatalf("root buf[%d] = %v, want %v", i, buf[i], w)
		}
	}
	if !math.IsNaN(buf[3]) {
		t.Fatalf("root buf[3] = %v, want NaN", buf[3])
	}

	SignedNthPowerBlock(buf, 4)
	want = []float64{-16, 0, 81}
	for i, w := range want {
		if !NearlyEqual(buf[i], w, 1e-12) {
			t.Fatalf("power buf[%d] = %v, want %v", i, buf[i], w)
		}
	}
}

func TestDegToRad(t *testing.T) {
	if !NearlyEqual(DegToRad(180), math.Pi, 1e-15) {
		t.Fatalf("DegToRad(180) = %v", DegToRad(180))
	}
}
