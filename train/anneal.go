package train

import "math"

// temperatures expands one cooling phase: start, start-step, ... while the
// temperature stays above zero.
func temperatures(start, step float64) []float64 {
	if start <= 0 || step <= 0 {
		return nil
	}
	n := int(math.Ceil(start / step))
	temps := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if temp := start - float64(i)*step; temp > 0 {
			temps = append(temps, temp)
		}
	}
	return temps
}

// anneal walks every phase of the schedule in order. Improvements are always
// taken, and a new overall best is snapshotted; a worse configuration is kept
// with probability exp(-(loss-current)/T). Once the schedule is exhausted the
// best snapshot is restored, which need not be the last state visited.
func (t *trainer) anneal() Result {
	current := t.loss()
	best := current
	bestWeights := t.weights.Snapshot()

	res := Result{}
	for _, start := range t.opts.Schedule {
		for _, temp := range temperatures(start, t.opts.TemperatureStep) {
			p := t.propose()
			loss := t.loss()

			accepted := true
			switch {
			case loss < current:
				current = loss
				if loss < best {
					best = loss
					bestWeights = t.weights.Snapshot()
				}
			case t.acceptWorse(loss-current, temp):
				current = loss
			default:
				accepted = false
				t.revert(p)
			}
			if accepted {
				res.Accepted++
			}
			t.observe(Step{
				Iteration:   res.Steps,
				Temperature: temp,
				Loss:        loss,
				CurrentLoss: current,
				BestLoss:    best,
				Accepted:    accepted,
			})
			res.Steps++
		}
	}

	t.weights.Restore(bestWeights)
	res.BestLoss = best
	return res
}
