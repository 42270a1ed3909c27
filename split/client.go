package split

import (
	"fmt"
	"time"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"

	"shadenet/core/ckkswrapper"
	"shadenet/nn"
	"shadenet/utils"
)

// Client holds the inputs and the secret key. For every calculated layer it
// encrypts the feeding values, lets the server form the weighted sums, and
// applies the activation locally after decryption.
type Client struct {
	p     *Protocol
	he    *ckkswrapper.HeContext
	topo  TopologyPayload
	acts  []nn.Activation
	Stats utils.TimingStats
}

// NewClient waits for the server's topology and generates keys for the
// announced ring dimension.
func NewClient(p *Protocol) (*Client, error) {
	topo, err := p.ReceiveTopology()
	if err != nil {
		return nil, fmt.Errorf("receiving topology: %w", err)
	}
	c := &Client{p: p, topo: *topo}
	for i, l := range topo.Layers {
		act, err := nn.ParseActivation(l.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		c.acts = append(c.acts, act)
	}

	start := time.Now()
	if c.he, err = ckkswrapper.NewHeContext(topo.LogN); err != nil {
		return nil, fmt.Errorf("server announced logN=%d: %w", topo.LogN, err)
	}
	c.Stats.HEInitTime = time.Since(start)
	return c, nil
}

// Topology returns the shape announced by the server.
func (c *Client) Topology() TopologyPayload { return c.topo }

// Predict runs one input through the remote network.
func (c *Client) Predict(input []float64) ([]float64, error) {
	if len(input) != c.topo.InputSize {
		return nil, fmt.Errorf("%w: got %d values for %d input nodes", nn.ErrInputSize, len(input), c.topo.InputSize)
	}
	values := append([]float64(nil), input...)
	for i, l := range c.topo.Layers {
		sums := make([]float64, l.Size)
		// A layer fed by no nodes has all-zero sums; nothing to ask for.
		if len(values) > 0 {
			var err error
			if sums, err = c.remoteSums(i, values, l.Size); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		values = activate(c.acts[i], sums)
		c.Stats.ClientActivateTime += time.Since(start)
	}
	return values, nil
}

func (c *Client) remoteSums(layer int, values []float64, size int) ([]float64, error) {
	start := time.Now()
	cts, err := c.he.EncryptValues(values)
	if err != nil {
		return nil, err
	}
	raw := make([][]byte, len(cts))
	for i, ct := range cts {
		if raw[i], err = ct.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	c.Stats.EncryptionTime += time.Since(start)

	if err := c.p.SendForward(layer, raw); err != nil {
		return nil, fmt.Errorf("sending layer %d: %w", layer, err)
	}
	payload, err := c.p.ReceiveForward()
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", layer, err)
	}
	if payload.Layer != layer || len(payload.Ciphertexts) != size {
		return nil, fmt.Errorf("layer %d: server answered for layer %d with %d sums, want %d",
			layer, payload.Layer, len(payload.Ciphertexts), size)
	}

	start = time.Now()
	sums := make([]float64, size)
	for i, b := range payload.Ciphertexts {
		ct := new(rlwe.Ciphertext)
		if err := ct.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("sum %d: %w", i, err)
		}
		if sums[i], err = c.he.DecryptValue(ct); err != nil {
			return nil, err
		}
	}
	c.Stats.DecryptionTime += time.Since(start)
	return sums, nil
}

// activate applies act to every sum of one layer, the sums doubling as the
// sibling values MAX and SOFTMAX compare against.
func activate(act nn.Activation, sums []float64) []float64 {
	out := make([]float64, len(sums))
	siblings := func() []float64 { return sums }
	for i, s := range sums {
		out[i] = act.Apply(s, siblings)
	}
	return out
}

// Close tells the server the session is over.
func (c *Client) Close() error {
	return c.p.SendDone()
}
