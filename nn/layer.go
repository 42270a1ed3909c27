package nn

// LayerKind distinguishes the two layer variants.
type LayerKind int

const (
	// InputLayer holds externally assigned values.
	InputLayer LayerKind = iota
	// CalculatedLayer derives its values from a fully connected feeding layer.
	CalculatedLayer
)

func (k LayerKind) String() string {
	if k == InputLayer {
		return "input"
	}
	return "calculated"
}

// Layer is one level of the network. Index, Activation and Feeding are only
// meaningful for calculated layers; the input layer has Index -1.
type Layer struct {
	Kind       LayerKind
	Index      int
	Activation Activation
	Feeding    *Layer

	size   int
	values []float64
}

func newInputLayer(size int) *Layer {
	return &Layer{Kind: InputLayer, Index: -1, size: size, values: make([]float64, size)}
}

func newCalculatedLayer(index, size int, act Activation, feeding *Layer) *Layer {
	return &Layer{Kind: CalculatedLayer, Index: index, Activation: act, Feeding: feeding, size: size}
}

// Size returns the number of nodes in the layer.
func (l *Layer) Size() int { return l.size }

// Nodes lists the layer's nodes in index order.
func (l *Layer) Nodes() []Node {
	nodes := make([]Node, l.size)
	for i := range nodes {
		nodes[i] = Node{Layer: l, Index: i}
	}
	return nodes
}

// Node is a position within a layer. It carries no value of its own: input
// values live in the input layer and calculated values are derived on read.
type Node struct {
	Layer *Layer
	Index int
}
