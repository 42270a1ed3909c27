package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadenet/nn"
	"shadenet/utils"
)

func init() {
	utils.Verbose = false
}

// orExamples is a small separable problem with a single sigmoid output.
var orExamples = []Example{
	{Input: []float64{0, 0}, Target: []float64{0}},
	{Input: []float64{0, 1}, Target: []float64{1}},
	{Input: []float64{1, 0}, Target: []float64{1}},
	{Input: []float64{1, 1}, Target: []float64{1}},
}

func orNetwork(seed uint64) *nn.Network {
	return nn.NewBuilder().
		Input(2).
		Hidden(3, nn.Sigmoid).
		Output(1, nn.Sigmoid).
		Build(nn.WithSeed(seed))
}

func TestHillClimbingBestLossNeverIncreases(t *testing.T) {
	net := orNetwork(1)
	before, err := Loss(net, orExamples)
	require.NoError(t, err)

	var steps []Step
	res, err := Train(net, orExamples, HillClimbing,
		WithIterations(500),
		WithSeed(2),
		WithObserver(func(s Step) { steps = append(steps, s) }))
	require.NoError(t, err)

	require.Len(t, steps, 500)
	assert.Equal(t, 500, res.Steps)
	assert.Equal(t, HillClimbing, res.Mode)
	assert.Greater(t, res.Accepted, 0)

	prev := math.Inf(1)
	for _, s := range steps {
		assert.LessOrEqual(t, s.BestLoss, prev, "iteration %d", s.Iteration)
		assert.Equal(t, s.Loss < prev, s.Accepted, "iteration %d", s.Iteration)
		assert.Zero(t, s.Temperature)
		prev = s.BestLoss
	}

	after, err := Loss(net, orExamples)
	require.NoError(t, err)
	assert.Equal(t, res.BestLoss, after)
	assert.LessOrEqual(t, after, before)
}

func TestHillClimbingKeepsWeightsInRange(t *testing.T) {
	net := nn.Build(2, nil, nn.LayerSpec{Size: 1, Activation: nn.Identity}, nn.WithSeed(3), nn.WithClamp(false))
	examples := []Example{{Input: []float64{1, 1}, Target: []float64{50}}}

	_, err := Train(net, examples, HillClimbing, WithIterations(300), WithLearningRate(5), WithSeed(4))
	require.NoError(t, err)

	for _, v := range net.Weights().Values(0) {
		assert.InDelta(t, 0, v, 1+1e-12)
	}
}

func TestContradictoryExamplesKeepPositiveLoss(t *testing.T) {
	net := nn.Build(1, nil, nn.LayerSpec{Size: 1, Activation: nn.Sigmoid}, nn.WithSeed(5))
	examples := []Example{
		{Input: []float64{1}, Target: []float64{0}},
		{Input: []float64{1}, Target: []float64{1}},
	}

	res, err := Train(net, examples, HillClimbing, WithIterations(1000), WithLearningRate(1), WithSeed(6))
	require.NoError(t, err)
	// (0-y)^2 + (1-y)^2 is never below 0.5.
	assert.InDelta(t, 0.5, res.BestLoss, 0.05)
	assert.Greater(t, res.BestLoss, 0.5-1e-9)
}

func TestAnnealingRestoresBest(t *testing.T) {
	net := orNetwork(7)
	initial, err := Loss(net, orExamples)
	require.NoError(t, err)

	var steps []Step
	res, err := Train(net, orExamples, SimulatedAnnealing,
		WithSchedule(20, 30),
		WithTemperatureStep(0.25),
		WithLearningRate(0.5),
		WithSeed(8),
		WithObserver(func(s Step) { steps = append(steps, s) }))
	require.NoError(t, err)
	require.Len(t, steps, res.Steps)
	assert.Equal(t, 200, res.Steps)

	final, err := Loss(net, orExamples)
	require.NoError(t, err)
	assert.Equal(t, res.BestLoss, final)
	assert.LessOrEqual(t, final, initial)

	for _, s := range steps {
		assert.LessOrEqual(t, final, s.Loss, "step %d", s.Iteration)
		assert.LessOrEqual(t, s.BestLoss, s.CurrentLoss, "step %d", s.Iteration)
		assert.Greater(t, s.Temperature, 0.0)
	}
}

func TestAnnealingScheduleLength(t *testing.T) {
	net := orNetwork(9)
	res, err := Train(net, orExamples, SimulatedAnnealing, WithSchedule(8, 12), WithTemperatureStep(4), WithSeed(10))
	require.NoError(t, err)
	// 8, 4 then 12, 8, 4
	assert.Equal(t, 5, res.Steps)
}

func TestTemperatures(t *testing.T) {
	assert.Equal(t, []float64{8, 4}, temperatures(8, 4))
	assert.Empty(t, temperatures(0, 1))
	assert.Empty(t, temperatures(5, 0))

	temps := temperatures(1, 0.3)
	require.Len(t, temps, 4)
	for i, temp := range temps {
		assert.Greater(t, temp, 0.0)
		if i > 0 {
			assert.Less(t, temp, temps[i-1])
		}
	}
}

func TestTrainSeededIsReproducible(t *testing.T) {
	run := func(mode Mode) ([]float64, float64) {
		net := orNetwork(11)
		res, err := Train(net, orExamples, mode, WithIterations(200), WithSchedule(1), WithTemperatureStep(0.01), WithSeed(12))
		require.NoError(t, err)
		var values []float64
		for layer := 0; layer < net.Weights().Layers(); layer++ {
			values = append(values, net.Weights().Values(layer)...)
		}
		return values, res.BestLoss
	}

	for _, mode := range []Mode{HillClimbing, SimulatedAnnealing} {
		w1, l1 := run(mode)
		w2, l2 := run(mode)
		assert.Equal(t, w1, w2, mode.String())
		assert.Equal(t, l1, l2, mode.String())
	}
}

func TestTrainRejectsMismatchedExamples(t *testing.T) {
	net := orNetwork(13)
	bad := []Example{{Input: []float64{1}, Target: []float64{1}}}

	_, err := Train(net, bad, HillClimbing, WithIterations(1))
	assert.ErrorIs(t, err, ErrExampleSize)

	_, err = Loss(net, []Example{{Input: []float64{1, 0}, Target: []float64{1, 0}}})
	assert.ErrorIs(t, err, ErrExampleSize)
}

func TestTrainWithoutWeights(t *testing.T) {
	net := nn.Build(0, nil, nn.LayerSpec{Size: 1, Activation: nn.Sigmoid})
	_, err := Train(net, nil, HillClimbing, WithIterations(10))
	assert.ErrorIs(t, err, ErrNoWeights)
}

func TestClampDelta(t *testing.T) {
	assert.InDelta(t, 0.1, clampDelta(0.9, 0.5), 1e-12)
	assert.InDelta(t, -0.2, clampDelta(-0.8, -0.5), 1e-12)
	assert.Equal(t, 0.3, clampDelta(0.2, 0.3))
	assert.Equal(t, 0.0, clampDelta(1, 0.7))
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{
		"hill-climbing":         HillClimbing,
		"Hill-Climbing":         HillClimbing,
		"simulated-annealing":   SimulatedAnnealing,
		" simulated-annealing ": SimulatedAnnealing,
	} {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"gradient-descent", "hill", "annealing"} {
		_, err := ParseMode(name)
		assert.Error(t, err, name)
	}
	assert.Equal(t, "simulated-annealing", SimulatedAnnealing.String())
}
