// Package train fits network weights by stochastic local search on the
// total squared error, one weight at a time and without gradients.
package train

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"shadenet/nn"
	"shadenet/utils"
)

var (
	// ErrExampleSize is returned when an example does not match the
	// network's input or output layer.
	ErrExampleSize = errors.New("example does not match network shape")
	// ErrNoWeights is returned when the network has no edge to perturb.
	ErrNoWeights = errors.New("network has no weights to train")
)

// Example is one labeled training vector.
type Example struct {
	Input  []float64
	Target []float64
}

// Mode selects the search procedure.
type Mode int

const (
	HillClimbing Mode = iota
	SimulatedAnnealing
)

func (m Mode) String() string {
	switch m {
	case HillClimbing:
		return "hill-climbing"
	case SimulatedAnnealing:
		return "simulated-annealing"
	}
	return "unknown"
}

// ParseMode accepts the names printed by Mode.String, ignoring case and
// surrounding space.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case HillClimbing.String():
		return HillClimbing, nil
	case SimulatedAnnealing.String():
		return SimulatedAnnealing, nil
	}
	return 0, errors.Errorf("unknown training mode %q", s)
}

// Step reports one proposal to an Observer.
type Step struct {
	Iteration   int
	Temperature float64 // 0 for hill climbing
	Loss        float64 // loss of the proposed configuration
	CurrentLoss float64 // loss of the configuration kept after this step
	BestLoss    float64
	Accepted    bool
}

// Result summarizes a training run.
type Result struct {
	Mode     Mode
	Steps    int
	Accepted int
	BestLoss float64
	Duration time.Duration
}

// Train mutates net's weights in place to reduce the total squared error
// over examples. Examples are checked against the network shape up front;
// after that the run cannot fail.
func Train(net *nn.Network, examples []Example, mode Mode, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkExamples(net, examples); err != nil {
		return Result{}, err
	}

	t := newTrainer(net, examples, mode, o)
	if len(t.nodes) == 0 {
		return Result{}, ErrNoWeights
	}

	start := time.Now()
	var res Result
	switch mode {
	case HillClimbing:
		res = t.hillClimb()
	case SimulatedAnnealing:
		res = t.anneal()
	default:
		return Result{}, errors.Errorf("unknown training mode %d", int(mode))
	}
	res.Mode = mode
	res.Duration = time.Since(start)
	utils.Logf("[%s] done: %d steps, %d accepted, best loss %.6f in %v",
		mode, res.Steps, res.Accepted, res.BestLoss, res.Duration)
	return res, nil
}

// Loss returns the total squared error of net over examples.
func Loss(net *nn.Network, examples []Example) (float64, error) {
	if err := checkExamples(net, examples); err != nil {
		return 0, err
	}
	return totalLoss(net, examples), nil
}

func checkExamples(net *nn.Network, examples []Example) error {
	in, out := net.Input().Size(), net.Output().Size()
	for i, ex := range examples {
		if len(ex.Input) != in || len(ex.Target) != out {
			return errors.Wrapf(ErrExampleSize, "example %d has %d inputs and %d targets, network wants %d and %d",
				i, len(ex.Input), len(ex.Target), in, out)
		}
	}
	return nil
}

// totalLoss sums (target - predicted)^2 over every output of every example.
func totalLoss(net *nn.Network, examples []Example) float64 {
	var total float64
	for _, ex := range examples {
		out, err := net.Predict(ex.Input)
		if err != nil {
			panic(err) // shapes were checked by checkExamples
		}
		for i, target := range ex.Target {
			d := target - out[i]
			total += d * d
		}
	}
	return total
}

type trainer struct {
	mode     Mode
	net      *nn.Network
	weights  *nn.Weights
	examples []Example
	opts     Options
	rng      *rand.Rand
	delta    distuv.StudentsT
	nodes    []nn.Node
}

func newTrainer(net *nn.Network, examples []Example, mode Mode, o Options) *trainer {
	seed := o.Seed
	if !o.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)
	t := &trainer{
		mode:     mode,
		net:      net,
		weights:  net.Weights(),
		examples: examples,
		opts:     o,
		rng:      rand.New(src),
		delta:    distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 3, Src: src},
	}
	for _, n := range net.CalculatedNodes() {
		if n.Layer.Feeding.Size() > 0 {
			t.nodes = append(t.nodes, n)
		}
	}
	return t
}

func (t *trainer) loss() float64 {
	return totalLoss(t.net, t.examples)
}

func (t *trainer) observe(s Step) {
	if t.opts.Observer != nil {
		t.opts.Observer(s)
	}
	if t.opts.LogEvery > 0 && s.Iteration%t.opts.LogEvery == 0 {
		utils.Logf("[%s] step %d T=%.3f loss %.6f current %.6f best %.6f",
			t.mode, s.Iteration, s.Temperature, s.Loss, s.CurrentLoss, s.BestLoss)
	}
}

// proposal records one applied perturbation so it can be undone exactly.
type proposal struct {
	key nn.WeightKey
	old float64
}

// propose picks a calculated node and one of its feeding nodes uniformly at
// random and nudges the edge between them by a Student-t draw scaled by the
// learning rate, shortened so the weight stays within [-1, 1].
func (t *trainer) propose() proposal {
	node := t.nodes[t.rng.Intn(len(t.nodes))]
	key := nn.WeightKey{
		Layer:  node.Layer.Index,
		Source: t.rng.Intn(node.Layer.Feeding.Size()),
		Dest:   node.Index,
	}
	old := t.weights.Get(key)
	t.weights.Modify(key, clampDelta(old, t.delta.Rand()*t.opts.LearningRate))
	return proposal{key: key, old: old}
}

func (t *trainer) revert(p proposal) {
	t.weights.Set(p.key, p.old)
}

// clampDelta shortens d so that w+d lies within [-1, 1].
func clampDelta(w, d float64) float64 {
	switch next := w + d; {
	case next > 1:
		return 1 - w
	case next < -1:
		return -1 - w
	}
	return d
}

// acceptWorse flips the annealing coin for a move that raises the loss by
// increase at the given temperature.
func (t *trainer) acceptWorse(increase, temperature float64) bool {
	return t.rng.Float64() < math.Exp(-increase/temperature)
}
