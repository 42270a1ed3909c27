package shade

import "golang.org/x/exp/rand"

// Model collects labeled colors and answers with the selected predictor.
type Model struct {
	samples   []Sample
	predictor Predictor
}

// NewModel returns an empty model. A nil predictor selects hill climbing.
func NewModel(p Predictor) *Model {
	if p == nil {
		p = Predictors["hill-climbing"]()
	}
	return &Model{predictor: p}
}

// Add records a labeled color.
func (m *Model) Add(c Color, s FontShade) {
	m.samples = append(m.samples, Sample{Color: c, Shade: s})
}

// Pretrain adds n random colors labeled by the formula.
func (m *Model) Pretrain(n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		c := RandomColor(rng)
		m.Add(c, Formulaic{}.Shade(c))
	}
}

// Samples returns a copy of the collected samples.
func (m *Model) Samples() []Sample {
	return append([]Sample(nil), m.samples...)
}

func (m *Model) Predictor() Predictor { return m.predictor }

// Predict asks the selected predictor about c.
func (m *Model) Predict(c Color) (FontShade, error) {
	return m.predictor.Predict(m.samples, c)
}
