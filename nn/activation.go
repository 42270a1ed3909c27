package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Activation is the scalar nonlinearity a calculated layer applies to each
// node's weighted sum.
type Activation int

const (
	Identity Activation = iota
	Sigmoid
	Tanh
	ReLU
	// Max passes a node's sum through only if it is the largest sum in its
	// layer, and outputs 0 otherwise.
	Max
	Softmax
)

var activationNames = [...]string{
	Identity: "identity",
	Sigmoid:  "sigmoid",
	Tanh:     "tanh",
	ReLU:     "relu",
	Max:      "max",
	Softmax:  "softmax",
}

// ActivationLookup maps lowercase names to activations.
var ActivationLookup = map[string]Activation{
	"identity": Identity,
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"max":      Max,
	"softmax":  Softmax,
}

// ParseActivation returns the activation with the given name, ignoring case.
func ParseActivation(name string) (Activation, error) {
	a, ok := ActivationLookup[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Errorf("unknown activation %q", name)
	}
	return a, nil
}

func (a Activation) String() string {
	if a < 0 || int(a) >= len(activationNames) {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// NeedsSiblings reports whether Apply reads the sums of the other nodes in
// the layer.
func (a Activation) NeedsSiblings() bool {
	return a == Max || a == Softmax
}

// Apply evaluates the activation for a node whose weighted sum is x.
//
// siblings returns the pre-activation sums of every node in the same layer,
// this node included, in index order. It is only called for Max and Softmax,
// and every call recomputes the sums from scratch.
//
// Degenerate inputs are not guarded: a Softmax whose exponentials overflow
// yields NaN or Inf, exactly as IEEE-754 arithmetic produces them.
func (a Activation) Apply(x float64, siblings func() []float64) float64 {
	switch a {
	case Identity:
		return x
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case Tanh:
		return math.Tanh(x)
	case ReLU:
		if x < 0 {
			return 0
		}
		return x
	case Max:
		if x == floats.Max(siblings()) {
			return x
		}
		return 0
	case Softmax:
		var denom float64
		for _, s := range siblings() {
			denom += math.Exp(s)
		}
		return math.Exp(x) / denom
	}
	panic(fmt.Sprintf("nn: unsupported activation %d", int(a)))
}
