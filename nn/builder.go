package nn

// Builder collects a network's shape declaratively. It validates nothing;
// an unset output layer defaults to zero ReLU nodes.
type Builder struct {
	input  int
	hidden []LayerSpec
	output LayerSpec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{output: LayerSpec{Size: 0, Activation: ReLU}}
}

// Input sets the number of input nodes.
func (b *Builder) Input(nodes int) *Builder {
	b.input = nodes
	return b
}

// Hidden appends a hidden layer.
func (b *Builder) Hidden(nodes int, act Activation) *Builder {
	b.hidden = append(b.hidden, LayerSpec{Size: nodes, Activation: act})
	return b
}

// Output sets the output layer, replacing any earlier one.
func (b *Builder) Output(nodes int, act Activation) *Builder {
	b.output = LayerSpec{Size: nodes, Activation: act}
	return b
}

// Build assembles the network.
func (b *Builder) Build(opts ...Option) *Network {
	return Build(b.input, append([]LayerSpec(nil), b.hidden...), b.output, opts...)
}
