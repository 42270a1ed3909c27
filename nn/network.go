package nn

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInputSize is returned by Predict when the number of input values does not
// match the input layer.
var ErrInputSize = errors.New("input size does not match input layer")

// LayerSpec describes a calculated layer to build.
type LayerSpec struct {
	Size       int
	Activation Activation
}

// Init selects how weights are initialized at construction.
type Init int

const (
	// InitRandom draws every weight uniformly from [-1, 1].
	InitRandom Init = iota
	// InitZero starts every weight at 0.
	InitZero
)

type options struct {
	init    Init
	clamp   bool
	memoize bool
	src     rand.Source
}

// Option configures Build.
type Option func(*options)

// WithInit selects the weight initialization policy.
func WithInit(i Init) Option { return func(o *options) { o.init = i } }

// WithClamp controls whether Weights.Modify clamps to [-1, 1]. On by default.
func WithClamp(clamp bool) Option { return func(o *options) { o.clamp = clamp } }

// WithMemo controls whether Predict caches weighted sums for the duration of
// one call. Results are identical either way. On by default.
func WithMemo(memo bool) Option { return func(o *options) { o.memoize = memo } }

// WithSeed seeds the source used for random initialization.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.src = rand.NewSource(seed) }
}

// WithSource sets the source used for random initialization.
func WithSource(src rand.Source) Option { return func(o *options) { o.src = src } }

// Network is a strictly layered feed-forward network: an input layer, zero or
// more hidden layers and one output layer, each calculated layer fully
// connected to the layer before it.
type Network struct {
	input   *Layer
	hidden  []*Layer
	output  *Layer
	weights *Weights
	memoize bool
}

// Build assembles a network. Sizes are not validated; a zero-sized output
// layer yields empty predictions.
func Build(inputSize int, hidden []LayerSpec, output LayerSpec, opts ...Option) *Network {
	o := options{clamp: true, memoize: true}
	for _, opt := range opts {
		opt(&o)
	}

	net := &Network{input: newInputLayer(max(inputSize, 0)), memoize: o.memoize}

	feeding := net.input
	shapes := make([][2]int, 0, len(hidden)+1)
	for i, spec := range hidden {
		l := newCalculatedLayer(i, max(spec.Size, 0), spec.Activation, feeding)
		net.hidden = append(net.hidden, l)
		shapes = append(shapes, [2]int{feeding.size, l.size})
		feeding = l
	}
	net.output = newCalculatedLayer(len(hidden), max(output.Size, 0), output.Activation, feeding)
	shapes = append(shapes, [2]int{feeding.size, net.output.size})

	net.weights = newWeights(shapes, o.clamp)
	if o.init == InitRandom {
		src := o.src
		if src == nil {
			src = rand.NewSource(uint64(time.Now().UnixNano()))
		}
		u := distuv.Uniform{Min: -1, Max: 1, Src: src}
		for i := range net.weights.data {
			net.weights.data[i] = u.Rand()
		}
	}
	return net
}

// Input returns the input layer.
func (n *Network) Input() *Layer { return n.input }

// Hidden returns the hidden layers in evaluation order.
func (n *Network) Hidden() []*Layer { return n.hidden }

// Output returns the output layer.
func (n *Network) Output() *Layer { return n.output }

// CalculatedLayers returns the hidden layers followed by the output layer.
func (n *Network) CalculatedLayers() []*Layer {
	layers := make([]*Layer, 0, len(n.hidden)+1)
	layers = append(layers, n.hidden...)
	return append(layers, n.output)
}

// CalculatedNodes lists every node of every calculated layer.
func (n *Network) CalculatedNodes() []Node {
	var nodes []Node
	for _, l := range n.CalculatedLayers() {
		nodes = append(nodes, l.Nodes()...)
	}
	return nodes
}

// Weights returns the live weight store.
func (n *Network) Weights() *Weights { return n.weights }

// Predict assigns input to the input layer and returns the output layer's
// values in index order.
func (n *Network) Predict(input []float64) ([]float64, error) {
	if len(input) != n.input.size {
		return nil, errors.Wrapf(ErrInputSize, "got %d values, want %d", len(input), n.input.size)
	}
	copy(n.input.values, input)

	e := n.newEvaluator(n.memoize)
	out := make([]float64, n.output.size)
	for i := range out {
		out[i] = e.value(n.output, i)
	}
	return out, nil
}

// Value evaluates one node against the most recently assigned input.
func (n *Network) Value(l *Layer, node int) float64 {
	return n.newEvaluator(false).value(l, node)
}

// Sum returns the pre-activation weighted sum of a calculated node against
// the most recently assigned input.
func (n *Network) Sum(l *Layer, node int) float64 {
	return n.newEvaluator(false).sum(l, node)
}

// WeightMatrix returns a calculated layer's weights as a (layer size) x
// (feeding size) matrix, so row i holds the edges into node i.
func (n *Network) WeightMatrix(layer int) *mat.Dense {
	rows, cols := n.weights.dests[layer], n.weights.sources[layer]
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(rows, cols, nil)
	for src := 0; src < cols; src++ {
		for dst := 0; dst < rows; dst++ {
			m.Set(dst, src, n.weights.Get(WeightKey{Layer: layer, Source: src, Dest: dst}))
		}
	}
	return m
}

// evaluator computes node values recursively from the current weights and
// input values. With memo set it remembers weighted sums for its own
// lifetime, which never spans more than one Predict call.
type evaluator struct {
	w    *Weights
	sums [][]float64
	have [][]bool
}

func (n *Network) newEvaluator(memo bool) *evaluator {
	e := &evaluator{w: n.weights}
	if memo {
		layers := n.CalculatedLayers()
		e.sums = make([][]float64, len(layers))
		e.have = make([][]bool, len(layers))
		for i, l := range layers {
			e.sums[i] = make([]float64, l.size)
			e.have[i] = make([]bool, l.size)
		}
	}
	return e
}

func (e *evaluator) value(l *Layer, node int) float64 {
	switch l.Kind {
	case InputLayer:
		return l.values[node]
	case CalculatedLayer:
		return l.Activation.Apply(e.sum(l, node), func() []float64 { return e.layerSums(l) })
	}
	panic("nn: unknown layer kind")
}

func (e *evaluator) sum(l *Layer, node int) float64 {
	if e.have != nil && e.have[l.Index][node] {
		return e.sums[l.Index][node]
	}
	var s float64
	for src := 0; src < l.Feeding.size; src++ {
		s += e.w.Get(WeightKey{Layer: l.Index, Source: src, Dest: node}) * e.value(l.Feeding, src)
	}
	if e.have != nil {
		e.sums[l.Index][node] = s
		e.have[l.Index][node] = true
	}
	return s
}

func (e *evaluator) layerSums(l *Layer) []float64 {
	sums := make([]float64, l.size)
	for i := range sums {
		sums[i] = e.sum(l, i)
	}
	return sums
}
