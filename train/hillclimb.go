package train

import "math"

// hillClimb runs a fixed number of single-weight proposals, keeping each one
// only if it strictly lowers the best loss seen so far. There is no early
// stopping.
func (t *trainer) hillClimb() Result {
	best := math.Inf(1)
	res := Result{}
	for i := 0; i < t.opts.Iterations; i++ {
		p := t.propose()
		loss := t.loss()

		accepted := loss < best
		if accepted {
			best = loss
			res.Accepted++
		} else {
			t.revert(p)
		}
		res.Steps++
		t.observe(Step{
			Iteration:   i,
			Loss:        loss,
			CurrentLoss: best,
			BestLoss:    best,
			Accepted:    accepted,
		})
	}
	res.BestLoss = best
	return res
}
