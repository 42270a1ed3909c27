package split

import (
	"fmt"
	"io"
	"time"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"

	"shadenet/core/ckkswrapper"
	"shadenet/nn"
	"shadenet/utils"
)

// Server evaluates the linear part of every calculated layer on encrypted
// feeding values. It never sees an activation's input or output in clear.
type Server struct {
	net   *nn.Network
	kit   *ckkswrapper.ServerKit
	logN  int
	Stats utils.TimingStats
}

// NewServer prepares a server for net using CKKS parameters of ring degree
// 2^logN. The client learns logN from the topology message.
func NewServer(net *nn.Network, logN int) (*Server, error) {
	params, err := ckkswrapper.NewParameters(logN)
	if err != nil {
		return nil, err
	}
	return &Server{net: net, kit: ckkswrapper.NewServerKit(params), logN: logN}, nil
}

// Topology describes net to a client without revealing weights.
func (s *Server) Topology() TopologyPayload {
	topo := TopologyPayload{LogN: s.logN, InputSize: s.net.Input().Size()}
	for _, l := range s.net.CalculatedLayers() {
		topo.Layers = append(topo.Layers, LayerInfo{Size: l.Size(), Activation: l.Activation.String()})
	}
	return topo
}

// Serve sends the topology and then answers forward requests until the
// client is done. Malformed requests are answered with an error message and
// do not end the session; transport failures do.
func (s *Server) Serve(p *Protocol) error {
	if err := p.SendTopology(s.Topology()); err != nil {
		return fmt.Errorf("sending topology: %w", err)
	}
	for {
		payload, err := p.ReceiveForward()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receiving forward: %w", err)
		}

		start := time.Now()
		out, err := s.forward(payload)
		s.Stats.ServerLinearTime += time.Since(start)
		if err != nil {
			utils.Logf("[SERVER] layer %d: %v", payload.Layer, err)
			if err := p.SendError(err); err != nil {
				return err
			}
			continue
		}
		if err := p.SendForwardOutput(payload.Layer, out); err != nil {
			return fmt.Errorf("sending layer %d: %w", payload.Layer, err)
		}
	}
}

func (s *Server) forward(payload *ForwardPayload) ([][]byte, error) {
	layers := s.net.CalculatedLayers()
	if payload.Layer < 0 || payload.Layer >= len(layers) {
		return nil, fmt.Errorf("no calculated layer %d", payload.Layer)
	}
	layer := layers[payload.Layer]
	feeding := layer.Feeding.Size()
	if len(payload.Ciphertexts) != feeding {
		return nil, fmt.Errorf("layer %d is fed by %d nodes, got %d ciphertexts",
			payload.Layer, feeding, len(payload.Ciphertexts))
	}

	cts := make([]*rlwe.Ciphertext, feeding)
	for i, b := range payload.Ciphertexts {
		ct := new(rlwe.Ciphertext)
		if err := ct.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
		cts[i] = ct
	}

	w := s.net.Weights()
	weights := make([]float64, feeding)
	out := make([][]byte, layer.Size())
	for dst := range out {
		for src := range weights {
			weights[src] = w.Get(nn.WeightKey{Layer: layer.Index, Source: src, Dest: dst})
		}
		sum, err := s.kit.WeightedSum(cts, weights)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", dst, err)
		}
		if out[dst], err = sum.MarshalBinary(); err != nil {
			return nil, fmt.Errorf("node %d: %w", dst, err)
		}
	}
	return out, nil
}
