package nn

import (
	"fmt"
	"math"
)

// WeightKey identifies the directed edge from node Source of a calculated
// layer's feeding layer to node Dest of the calculated layer Layer.
type WeightKey struct {
	Layer  int
	Source int
	Dest   int
}

func (k WeightKey) String() string {
	return fmt.Sprintf("w[%d](%d->%d)", k.Layer, k.Source, k.Dest)
}

// Weights stores one scalar per edge of the network in a single contiguous
// slice. A calculated layer's block starts at its base offset and is laid
// out source-major, so a key resolves to base + Source*destCount + Dest.
type Weights struct {
	data    []float64
	base    []int
	sources []int
	dests   []int
	clamp   bool
}

// newWeights allocates a zeroed arena; shapes holds (feeding size, layer size)
// for each calculated layer in evaluation order.
func newWeights(shapes [][2]int, clamp bool) *Weights {
	w := &Weights{
		base:    make([]int, len(shapes)),
		sources: make([]int, len(shapes)),
		dests:   make([]int, len(shapes)),
		clamp:   clamp,
	}
	total := 0
	for i, s := range shapes {
		w.base[i] = total
		w.sources[i] = s[0]
		w.dests[i] = s[1]
		total += s[0] * s[1]
	}
	w.data = make([]float64, total)
	return w
}

func (w *Weights) offset(k WeightKey) int {
	if k.Layer < 0 || k.Layer >= len(w.base) ||
		k.Source < 0 || k.Source >= w.sources[k.Layer] ||
		k.Dest < 0 || k.Dest >= w.dests[k.Layer] {
		panic(fmt.Sprintf("nn: missing weight %v", k))
	}
	return w.base[k.Layer] + k.Source*w.dests[k.Layer] + k.Dest
}

// Get returns the weight of an edge. A key that names no edge is an internal
// consistency error and panics.
func (w *Weights) Get(k WeightKey) float64 {
	return w.data[w.offset(k)]
}

// Set overwrites the weight of an edge without clamping.
func (w *Weights) Set(k WeightKey, v float64) {
	w.data[w.offset(k)] = v
}

// Modify adds delta to the weight of an edge, clamps the result to [-1, 1]
// if the store is clamped, and returns the stored value.
func (w *Weights) Modify(k WeightKey, delta float64) float64 {
	i := w.offset(k)
	v := w.data[i] + delta
	if w.clamp {
		v = clampUnit(v)
	}
	w.data[i] = v
	return v
}

// Layers returns the number of calculated layers the store covers.
func (w *Weights) Layers() int { return len(w.base) }

// Len returns the number of edges feeding a calculated layer.
func (w *Weights) Len(layer int) int {
	return w.sources[layer] * w.dests[layer]
}

// Total returns the number of edges in the network.
func (w *Weights) Total() int { return len(w.data) }

// Keys lists every edge of a calculated layer in storage order.
func (w *Weights) Keys(layer int) []WeightKey {
	keys := make([]WeightKey, 0, w.Len(layer))
	for src := 0; src < w.sources[layer]; src++ {
		for dst := 0; dst < w.dests[layer]; dst++ {
			keys = append(keys, WeightKey{Layer: layer, Source: src, Dest: dst})
		}
	}
	return keys
}

// Values returns a copy of a calculated layer's weights in storage order.
func (w *Weights) Values(layer int) []float64 {
	start := w.base[layer]
	return append([]float64(nil), w.data[start:start+w.Len(layer)]...)
}

// Snapshot is a copy of every weight in a store, detached from later
// modifications.
type Snapshot struct {
	data []float64
}

// Snapshot copies the current weights.
func (w *Weights) Snapshot() Snapshot {
	return Snapshot{data: append([]float64(nil), w.data...)}
}

// Restore overwrites every weight with a snapshot taken from this store.
func (w *Weights) Restore(s Snapshot) {
	if len(s.data) != len(w.data) {
		panic(fmt.Sprintf("nn: snapshot holds %d weights, store has %d", len(s.data), len(w.data)))
	}
	copy(w.data, s.data)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
