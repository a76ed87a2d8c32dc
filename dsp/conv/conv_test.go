package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sed/internal/testutil"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{
			name:     "simple 3x3",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 1, 1},
			expected: []float64{1, 3, 6, 5, 3},
		},
		{
			name:     "impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "delayed impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{0, 0, 1},
			expected: []float64{0, 0, 1, 2, 3, 4, 5},
		},
		{
			name:     "symmetric",
			a:        []float64{1, 2, 1},
			b:        []float64{1, 2, 1},
			expected: []float64{1, 4, 6, 4, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, result, tt.expected, 1e-10)
		})
	}
}

func TestDirectErrors(t *testing.T) {
	_, err := Direct([]float64{}, []float64{1, 2})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	_, err = Direct([]float64{1, 2}, []float64{})
	if !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	signal := testutil.DeterministicNoise(1, 1.0, 1000)
	kernel := testutil.DeterministicNoise(2, 1.0, 129)

	want, err := Direct(signal, kernel)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	got, err := OverlapAddConvolve(signal, kernel)
	if err != nil {
		t.Fatalf("overlap-add: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestConvolveWithMethods(t *testing.T) {
	signal := testutil.DeterministicNoise(3, 1.0, 300)
	kernel := testutil.DeterministicNoise(4, 1.0, 17)

	direct, err := ConvolveWith(signal, kernel, MethodDirect)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	fft, err := ConvolveWith(signal, kernel, MethodFFT)
	if err != nil {
		t.Fatalf("fft: %v", err)
	}
	auto, err := Convolve(kernel, signal)
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, fft, direct, 1e-9)
	testutil.RequireSliceNearlyEqual(t, auto, direct, 1e-9)
}

func TestConvolveModeSame(t *testing.T) {
	got, err := ConvolveMode([]float64{1, 2, 3, 4}, []float64{1, 1, 1}, ModeSame, MethodDirect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{3, 6, 9, 7}, 1e-12)
}

func TestSameNormalizedPreservesConstant(t *testing.T) {
	kernel := make([]float64, 41)
	for i := range kernel {
		x := float64(i-20) / 6
		kernel[i] = math.Exp(-0.5 * x * x)
	}
	signal := testutil.Constant(500, 2.5)

	for _, m := range []Method{MethodDirect, MethodFFT} {
		got, err := SameNormalized(signal, nil, kernel, m)
		if err != nil {
			t.Fatalf("method %d: %v", m, err)
		}
		testutil.RequireSliceNearlyEqual(t, got, signal, 1e-10)
	}
}

func TestSameNormalizedIgnoresZeroWeight(t *testing.T) {
	signal := []float64{1, 1, 100, 1, 1}
	weights := []float64{1, 1, 0, 1, 1}
	got, err := SameNormalized(signal, weights, []float64{1, 1, 1}, MethodDirect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, testutil.Constant(5, 1), 1e-12)

	if _, err := SameNormalized(signal, []float64{1}, []float64{1}, MethodDirect); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}
