package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constSiblings(sums ...float64) func() []float64 {
	return func() []float64 { return sums }
}

func TestActivationScalars(t *testing.T) {
	none := func() []float64 {
		t.Fatal("scalar activation asked for siblings")
		return nil
	}

	assert.Equal(t, 2.5, Identity.Apply(2.5, none))
	assert.Equal(t, 0.5, Sigmoid.Apply(0, none))
	assert.InDelta(t, 0.7310585786300049, Sigmoid.Apply(1, none), 1e-15)
	assert.InDelta(t, math.Tanh(0.3), Tanh.Apply(0.3, none), 1e-15)
	assert.Equal(t, 0.0, ReLU.Apply(-3, none))
	assert.Equal(t, 3.0, ReLU.Apply(3, none))
}

func TestActivationMaxGate(t *testing.T) {
	sums := constSiblings(1.0, 3.0, 2.0)

	assert.Equal(t, 0.0, Max.Apply(1.0, sums))
	assert.Equal(t, 3.0, Max.Apply(3.0, sums))
	assert.Equal(t, 0.0, Max.Apply(2.0, sums))
}

func TestActivationSoftmax(t *testing.T) {
	sums := []float64{0.5, -1, 2}
	var total float64
	for _, s := range sums {
		total += Softmax.Apply(s, constSiblings(sums...))
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	want := math.Exp(2) / (math.Exp(0.5) + math.Exp(-1) + math.Exp(2))
	assert.InDelta(t, want, Softmax.Apply(2, constSiblings(sums...)), 1e-15)
}

func TestActivationSoftmaxOverflowPropagates(t *testing.T) {
	got := Softmax.Apply(1000, constSiblings(1000, 1000))
	assert.True(t, math.IsNaN(got), "expected NaN, got %v", got)
}

func TestParseActivation(t *testing.T) {
	for name, want := range ActivationLookup {
		got, err := ParseActivation(" " + name + " ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	a, err := ParseActivation("SoftMax")
	require.NoError(t, err)
	assert.Equal(t, Softmax, a)

	_, err = ParseActivation("swish")
	assert.Error(t, err)
}

func TestNeedsSiblings(t *testing.T) {
	assert.True(t, Max.NeedsSiblings())
	assert.True(t, Softmax.NeedsSiblings())
	assert.False(t, Sigmoid.NeedsSiblings())
}
