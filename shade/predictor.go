package shade

import (
	"sort"

	"github.com/pkg/errors"

	"shadenet/nn"
	"shadenet/train"
	"shadenet/utils"
)

// Sample is a color labeled by a person.
type Sample struct {
	Color Color
	Shade FontShade
}

// Examples turns samples into training examples for a network with four
// inputs and two outputs.
func Examples(samples []Sample) []train.Example {
	examples := make([]train.Example, len(samples))
	for i, s := range samples {
		examples[i] = train.Example{Input: s.Color.Attributes(), Target: s.Shade.Target()}
	}
	return examples
}

// Predictor recommends a shade for c given everything labeled so far.
type Predictor interface {
	Name() string
	Predict(samples []Sample, c Color) (FontShade, error)
}

// Formulaic ignores the samples and thresholds the inverted luminance.
type Formulaic struct{}

func (Formulaic) Name() string { return "formulaic" }

func (Formulaic) Predict(_ []Sample, c Color) (FontShade, error) {
	return Formulaic{}.Shade(c), nil
}

// Shade is Predict without the error.
func (Formulaic) Shade(c Color) FontShade {
	if 1-c.Luminance() < 0.5 {
		return Dark
	}
	return Light
}

// Neural keeps a 4-input, 2-output network and retrains it on all samples
// before every prediction. Nothing is persisted between runs of the program.
type Neural struct {
	Mode   train.Mode
	Hidden int
	// Options are passed to every training run.
	Options []train.Option
	// Seed fixes weight initialization when non-zero.
	Seed uint64

	net *nn.Network
}

// NewNeural returns a Neural predictor with one hidden layer of four nodes.
func NewNeural(mode train.Mode, opts ...train.Option) *Neural {
	return &Neural{Mode: mode, Hidden: 4, Options: opts}
}

func (p *Neural) Name() string { return p.Mode.String() }

// Network returns the network, building it on first use.
func (p *Neural) Network() *nn.Network {
	if p.net == nil {
		var opts []nn.Option
		if p.Seed != 0 {
			opts = append(opts, nn.WithSeed(p.Seed))
		}
		p.net = nn.NewBuilder().
			Input(4).
			Hidden(p.Hidden, nn.Sigmoid).
			Output(2, nn.Sigmoid).
			Build(opts...)
	}
	return p.net
}

// Predict answers DARK when the DARK output is strictly larger.
func (p *Neural) Predict(samples []Sample, c Color) (FontShade, error) {
	net := p.Network()
	if len(samples) > 0 {
		if _, err := train.Train(net, Examples(samples), p.Mode, p.Options...); err != nil {
			return 0, errors.Wrap(err, "training")
		}
	}
	out, err := net.Predict(c.Attributes())
	if err != nil {
		return 0, err
	}
	utils.Logf("DARK: %f LIGHT: %f", out[0], out[1])
	return Classify(out), nil
}

// Predictors maps names to predictor constructors.
var Predictors = map[string]func() Predictor{
	"formulaic": func() Predictor { return Formulaic{} },
	train.HillClimbing.String(): func() Predictor {
		return NewNeural(train.HillClimbing)
	},
	train.SimulatedAnnealing.String(): func() Predictor {
		return NewNeural(train.SimulatedAnnealing)
	},
}

// NewPredictor looks a predictor up by name.
func NewPredictor(name string) (Predictor, error) {
	ctor, ok := Predictors[name]
	if !ok {
		return nil, errors.Errorf("unknown predictor %q", name)
	}
	return ctor(), nil
}

// PredictorNames lists the registered predictors in sorted order.
func PredictorNames() []string {
	names := make([]string, 0, len(Predictors))
	for name := range Predictors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
