package train

// Options tunes a training run. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Iterations is the hill climbing budget.
	Iterations int
	// LearningRate scales every Student-t perturbation.
	LearningRate float64
	// Schedule lists the starting temperature of each annealing phase. The
	// phases run back to back, each cooling to zero.
	Schedule []float64
	// TemperatureStep is subtracted from the temperature after every
	// annealing step.
	TemperatureStep float64
	// Seed fixes the random source when set through WithSeed.
	Seed   uint64
	seeded bool
	// LogEvery prints progress through utils.Logf every LogEvery steps; 0
	// disables it.
	LogEvery int
	// Observer, if set, sees every step.
	Observer func(Step)
}

// DefaultOptions returns the settings used when no Option overrides them.
func DefaultOptions() Options {
	return Options{
		Iterations:      100_000,
		LearningRate:    0.1,
		Schedule:        []float64{80.0, 120.0},
		TemperatureStep: 0.005,
	}
}

// Option overrides a default.
type Option func(*Options)

func WithIterations(n int) Option { return func(o *Options) { o.Iterations = n } }

func WithLearningRate(rate float64) Option { return func(o *Options) { o.LearningRate = rate } }

// WithSchedule replaces the annealing phases' starting temperatures.
func WithSchedule(starts ...float64) Option {
	return func(o *Options) { o.Schedule = append([]float64(nil), starts...) }
}

func WithTemperatureStep(step float64) Option {
	return func(o *Options) { o.TemperatureStep = step }
}

func WithSeed(seed uint64) Option {
	return func(o *Options) {
		o.Seed = seed
		o.seeded = true
	}
}

func WithLogEvery(n int) Option { return func(o *Options) { o.LogEvery = n } }

func WithObserver(fn func(Step)) Option { return func(o *Options) { o.Observer = fn } }
