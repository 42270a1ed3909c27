package ckkswrapper

import (
	"math"
	"testing"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

func newTestContext(t testing.TB) *HeContext {
	t.Helper()
	h, err := NewHeContext(12)
	if err != nil {
		t.Fatalf("NewHeContext failed: %v", err)
	}
	return h
}

func TestHeContextRoundTrip(t *testing.T) {
	h, err := NewHeContext(DefaultLogN)
	if err != nil {
		t.Fatalf("NewHeContext failed: %v", err)
	}
	for _, v := range []float64{3.1415926535, -0.75, 0, 1} {
		ct, err := h.EncryptValue(v)
		if err != nil {
			t.Fatalf("encrypt error: %v", err)
		}
		if ct.Level() != h.Params.MaxLevel() {
			t.Errorf("fresh ciphertext at level %d, want %d", ct.Level(), h.Params.MaxLevel())
		}
		got, err := h.DecryptValue(ct)
		if err != nil {
			t.Fatalf("decrypt error: %v", err)
		}
		if math.Abs(got-v) > 1e-6 {
			t.Fatalf("roundtrip mismatch: got %f, want %f", got, v)
		}
	}
}

func TestNewHeContextBadLogN(t *testing.T) {
	if _, err := NewHeContext(3); err == nil {
		t.Errorf("expected an error for logN=3")
	}
}

func TestWeightedSum(t *testing.T) {
	h := newTestContext(t)
	kit := NewServerKit(h.Params)

	values := []float64{0.2, 0.9, 0.4, 0.6}
	weights := []float64{-0.5, 0.25, 1, -1}
	cts, err := h.EncryptValues(values)
	if err != nil {
		t.Fatalf("EncryptValues failed: %v", err)
	}

	sum, err := kit.WeightedSum(cts, weights)
	if err != nil {
		t.Fatalf("WeightedSum failed: %v", err)
	}
	if sum.Level() != h.Params.MaxLevel()-1 {
		t.Errorf("sum at level %d, want %d", sum.Level(), h.Params.MaxLevel()-1)
	}

	var want float64
	for i := range values {
		want += values[i] * weights[i]
	}
	got, err := h.DecryptValue(sum)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("weighted sum = %f, want %f", got, want)
	}

	if !NeedsRefresh(sum, 0) {
		t.Errorf("exhausted ciphertext should need a refresh")
	}
	if _, err := kit.WeightedSum([]*rlwe.Ciphertext{sum}, []float64{1}); err == nil {
		t.Errorf("expected an error multiplying at level 0")
	}
}

func TestWeightedSumIntegerWeights(t *testing.T) {
	h := newTestContext(t)
	kit := NewServerKit(h.Params)

	values := []float64{0.9, 0.2, -0.4}
	cts, err := h.EncryptValues(values)
	if err != nil {
		t.Fatalf("EncryptValues failed: %v", err)
	}

	for _, weights := range [][]float64{
		{1, -1, 0},
		{1, 1, 1},
		{0, 0, 0},
		{-1, 0, 1},
	} {
		sum, err := kit.WeightedSum(cts, weights)
		if err != nil {
			t.Fatalf("WeightedSum(%v) failed: %v", weights, err)
		}
		if ratio := sum.Scale.Float64() / cts[0].Scale.Float64(); math.Abs(ratio-1) > 1e-9 {
			t.Errorf("weights %v: sum scale is %g times the input scale", weights, ratio)
		}
		var want float64
		for i := range values {
			want += values[i] * weights[i]
		}
		got, err := h.DecryptValue(sum)
		if err != nil {
			t.Fatalf("decrypt error: %v", err)
		}
		if math.Abs(got-want) > 1e-5 {
			t.Errorf("weights %v: sum = %f, want %f", weights, got, want)
		}
	}
}

func TestWeightedSumShapeMismatch(t *testing.T) {
	h := newTestContext(t)
	kit := NewServerKit(h.Params)
	cts, err := h.EncryptValues([]float64{1, 2})
	if err != nil {
		t.Fatalf("EncryptValues failed: %v", err)
	}
	if _, err := kit.WeightedSum(cts, []float64{1}); err == nil {
		t.Errorf("expected an error for mismatched lengths")
	}
	if _, err := kit.WeightedSum(nil, nil); err == nil {
		t.Errorf("expected an error for an empty sum")
	}

	low, err := kit.WeightedSum(cts[:1], []float64{0.5})
	if err != nil {
		t.Fatalf("WeightedSum failed: %v", err)
	}
	if _, err := kit.WeightedSum([]*rlwe.Ciphertext{cts[1], low}, []float64{1, 1}); err == nil {
		t.Errorf("expected an error for ciphertexts at different levels")
	}
}

func TestNeedsRefresh(t *testing.T) {
	h := newTestContext(t)
	ct, err := h.EncryptValue(1)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}

	if NeedsRefresh(ct, 0) {
		t.Errorf("fresh ciphertext should not need a refresh")
	}
	if NeedsRefresh(ct, -3) {
		t.Errorf("negative threshold should behave like 0")
	}
	if !NeedsRefresh(ct, h.Params.MaxLevel()) {
		t.Errorf("should need a refresh when threshold >= level")
	}
}

func TestServerKitFromParameters(t *testing.T) {
	params, err := NewParameters(DefaultLogN)
	if err != nil {
		t.Fatalf("NewParameters failed: %v", err)
	}
	h := NewHeContextFromParameters(params)
	kit := NewServerKit(params)

	ct, err := h.EncryptValue(0.5)
	if err != nil {
		t.Fatalf("encrypt error: %v", err)
	}
	sum, err := kit.WeightedSum([]*rlwe.Ciphertext{ct}, []float64{0.5})
	if err != nil {
		t.Fatalf("WeightedSum failed: %v", err)
	}
	got, err := h.DecryptValue(sum)
	if err != nil {
		t.Fatalf("decrypt error: %v", err)
	}
	if math.Abs(got-0.25) > 1e-5 {
		t.Errorf("got %f, want 0.25", got)
	}
}
