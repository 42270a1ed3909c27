package train

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"shadenet/nn"
	"shadenet/utils"
)

// NetworkFromConfig builds the network described by cfg.Architecture and
// cfg.Activations. The config is validated first.
func NetworkFromConfig(cfg *utils.Config) (*nn.Network, error) {
	if err := utils.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	b := nn.NewBuilder().Input(cfg.Architecture[0])
	last := len(cfg.Architecture) - 1
	for i, size := range cfg.Architecture[1:] {
		act, err := nn.ParseActivation(cfg.Activations[i])
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i+1)
		}
		if i+1 == last {
			b.Output(size, act)
		} else {
			b.Hidden(size, act)
		}
	}

	var opts []nn.Option
	if cfg.Seed != 0 {
		opts = append(opts, nn.WithSeed(cfg.Seed))
	}
	return b.Build(opts...), nil
}

// OptionsFromConfig maps cfg onto training options. A zero seed leaves the
// run unseeded.
func OptionsFromConfig(cfg *utils.Config) []Option {
	opts := []Option{
		WithIterations(cfg.Iterations),
		WithLearningRate(cfg.LearningRate),
	}
	if cfg.TemperatureStep > 0 {
		opts = append(opts, WithTemperatureStep(cfg.TemperatureStep))
	}
	if cfg.Seed != 0 {
		// Offset so initialization and search draw different streams.
		opts = append(opts, WithSeed(cfg.Seed+1))
	}
	return opts
}

// DataSource returns the random source for synthetic training data. It is
// offset from both the initialization seed and the search seed so the three
// streams are independent; a zero seed falls back to the clock.
func DataSource(cfg *utils.Config) *rand.Rand {
	if cfg.Seed == 0 {
		return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return rand.New(rand.NewSource(cfg.Seed + 2))
}
