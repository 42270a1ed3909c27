package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAll(net *Network, v float64) {
	w := net.Weights()
	for layer := 0; layer < w.Layers(); layer++ {
		for _, k := range w.Keys(layer) {
			w.Set(k, v)
		}
	}
}

func TestTopologyWeightCounts(t *testing.T) {
	net := Build(3, []LayerSpec{{Size: 3, Activation: Sigmoid}}, LayerSpec{Size: 2, Activation: Sigmoid}, WithSeed(1))

	w := net.Weights()
	assert.Equal(t, 9, w.Len(0))
	assert.Equal(t, 6, w.Len(1))
	for layer := 0; layer < w.Layers(); layer++ {
		for _, v := range w.Values(layer) {
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	layers := net.CalculatedLayers()
	require.Len(t, layers, 2)
	assert.Same(t, net.Input(), layers[0].Feeding)
	assert.Same(t, layers[0], layers[1].Feeding)
	assert.Same(t, net.Output(), layers[1])
	assert.Equal(t, 0, layers[0].Index)
	assert.Equal(t, 1, layers[1].Index)
	assert.Len(t, net.CalculatedNodes(), 5)
}

func TestPredictGoldenSigmoid(t *testing.T) {
	net := NewBuilder().
		Input(2).
		Hidden(2, Sigmoid).
		Output(1, Sigmoid).
		Build(WithInit(InitZero))
	setAll(net, 0.5)

	out, err := net.Predict([]float64{1.0, 1.0})
	require.NoError(t, err)
	require.Len(t, out, 1)

	sigmoid := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	hidden := sigmoid(0.5*1.0 + 0.5*1.0)
	want := sigmoid(0.5*hidden + 0.5*hidden)

	assert.Equal(t, want, out[0])
	assert.InDelta(t, 0.6750375273768237, out[0], 1e-15)
}

func TestPredictDeterministic(t *testing.T) {
	net := Build(4, []LayerSpec{{Size: 5, Activation: Tanh}, {Size: 3, Activation: Softmax}}, LayerSpec{Size: 2, Activation: Max}, WithSeed(7))
	in := []float64{0.2, -0.4, 0.9, 0.1}

	first, err := net.Predict(in)
	require.NoError(t, err)
	second, err := net.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictMemoMatchesRecomputation(t *testing.T) {
	hidden := []LayerSpec{{Size: 4, Activation: Softmax}, {Size: 3, Activation: ReLU}}
	output := LayerSpec{Size: 3, Activation: Softmax}
	memo := Build(3, hidden, output, WithSeed(42))
	lazy := Build(3, hidden, output, WithSeed(42), WithMemo(false))

	for _, in := range [][]float64{{0, 0, 0}, {1, 0.5, -0.5}, {0.9, 0.1, 0.3}} {
		a, err := memo.Predict(in)
		require.NoError(t, err)
		b, err := lazy.Predict(in)
		require.NoError(t, err)
		assert.Equal(t, a, b, "input %v", in)
	}
}

func TestPredictInputSizeMismatch(t *testing.T) {
	net := Build(2, nil, LayerSpec{Size: 1, Activation: Identity}, WithSeed(3))

	_, err := net.Predict([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInputSize)
	_, err = net.Predict(nil)
	require.ErrorIs(t, err, ErrInputSize)
}

func TestPredictWithoutHiddenLayers(t *testing.T) {
	net := Build(2, nil, LayerSpec{Size: 1, Activation: Identity}, WithInit(InitZero))
	w := net.Weights()
	w.Set(WeightKey{Layer: 0, Source: 0, Dest: 0}, 0.25)
	w.Set(WeightKey{Layer: 0, Source: 1, Dest: 0}, -0.5)

	out, err := net.Predict([]float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out)
}

func TestMaxOutputLayerGates(t *testing.T) {
	net := Build(1, nil, LayerSpec{Size: 3, Activation: Max}, WithInit(InitZero))
	w := net.Weights()
	w.Set(WeightKey{Layer: 0, Source: 0, Dest: 0}, 0.1)
	w.Set(WeightKey{Layer: 0, Source: 0, Dest: 1}, 0.3)
	w.Set(WeightKey{Layer: 0, Source: 0, Dest: 2}, 0.2)

	out, err := net.Predict([]float64{10})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 0}, out)
	assert.Equal(t, 3.0, net.Sum(net.Output(), 1))
	assert.Equal(t, 0.0, net.Value(net.Output(), 2))
}

func TestZeroSizedDefaultOutput(t *testing.T) {
	net := NewBuilder().Input(2).Hidden(2, Sigmoid).Build(WithSeed(5))

	assert.Equal(t, ReLU, net.Output().Activation)
	assert.Equal(t, 0, net.Weights().Len(1))

	out, err := net.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSeededInitIsReproducible(t *testing.T) {
	a := Build(2, []LayerSpec{{Size: 2, Activation: Sigmoid}}, LayerSpec{Size: 2, Activation: Sigmoid}, WithSeed(99))
	b := Build(2, []LayerSpec{{Size: 2, Activation: Sigmoid}}, LayerSpec{Size: 2, Activation: Sigmoid}, WithSeed(99))

	assert.Equal(t, a.Weights().Values(0), b.Weights().Values(0))
	assert.Equal(t, a.Weights().Values(1), b.Weights().Values(1))
}

func TestWeightMatrix(t *testing.T) {
	net := Build(3, nil, LayerSpec{Size: 2, Activation: Identity}, WithInit(InitZero))
	net.Weights().Set(WeightKey{Layer: 0, Source: 2, Dest: 1}, 0.75)

	m := net.WeightMatrix(0)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.75, m.At(1, 2))
	assert.Equal(t, 0.0, m.At(0, 2))
}
