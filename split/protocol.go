// Package split runs a trained network across two parties: the client keeps
// the inputs and the CKKS secret key, the server keeps the weights.
package split

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	// Register types for gob encoding
	gob.Register(TopologyPayload{})
	gob.Register(ForwardPayload{})
}

// MessageType defines message types for the split inference protocol
type MessageType int

const (
	MsgTopology MessageType = iota
	MsgForwardInput
	MsgForwardOutput
	MsgDone
	MsgError
)

func (t MessageType) String() string {
	switch t {
	case MsgTopology:
		return "topology"
	case MsgForwardInput:
		return "forward-input"
	case MsgForwardOutput:
		return "forward-output"
	case MsgDone:
		return "done"
	case MsgError:
		return "error"
	}
	return fmt.Sprintf("MessageType(%d)", int(t))
}

// Message represents a message in the split inference protocol
type Message struct {
	Type    MessageType
	Payload interface{}
}

// LayerInfo is what the client needs to know about one calculated layer.
type LayerInfo struct {
	Size       int
	Activation string
}

// TopologyPayload is the server's opening message. It carries no weights.
type TopologyPayload struct {
	LogN      int
	InputSize int
	Layers    []LayerInfo
}

// ForwardPayload carries one serialized ciphertext per node. From the client
// these are the values of the layer feeding Layer; from the server, the
// weighted sums of Layer's nodes.
type ForwardPayload struct {
	Layer       int
	Ciphertexts [][]byte
}

// Protocol handles split inference communication
type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewProtocol creates a new protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	return &Protocol{
		encoder: gob.NewEncoder(w),
		decoder: gob.NewDecoder(r),
	}
}

// Send sends a message
func (p *Protocol) Send(msg *Message) error {
	return p.encoder.Encode(msg)
}

// Receive receives a message
func (p *Protocol) Receive() (*Message, error) {
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendTopology announces the network shape and ring dimension.
func (p *Protocol) SendTopology(topo TopologyPayload) error {
	return p.Send(&Message{Type: MsgTopology, Payload: topo})
}

// SendForward sends a layer's encrypted feeding values to the server.
func (p *Protocol) SendForward(layer int, cts [][]byte) error {
	return p.Send(&Message{
		Type:    MsgForwardInput,
		Payload: ForwardPayload{Layer: layer, Ciphertexts: cts},
	})
}

// SendForwardOutput sends a layer's encrypted weighted sums back.
func (p *Protocol) SendForwardOutput(layer int, cts [][]byte) error {
	return p.Send(&Message{
		Type:    MsgForwardOutput,
		Payload: ForwardPayload{Layer: layer, Ciphertexts: cts},
	})
}

// SendDone signals completion
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

// SendError sends an error message
func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{
		Type:    MsgError,
		Payload: err.Error(),
	})
}

// ReceiveTopology receives the server's opening message.
func (p *Protocol) ReceiveTopology() (*TopologyPayload, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	if msg.Type == MsgError {
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	}
	if msg.Type != MsgTopology {
		return nil, fmt.Errorf("expected topology message, got %v", msg.Type)
	}
	payload, ok := msg.Payload.(TopologyPayload)
	if !ok {
		return nil, fmt.Errorf("invalid topology payload type")
	}
	return &payload, nil
}

// ReceiveForward receives a forward payload. A done message is reported as
// io.EOF.
func (p *Protocol) ReceiveForward() (*ForwardPayload, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	if msg.Type == MsgError {
		return nil, fmt.Errorf("remote error: %v", msg.Payload)
	}
	if msg.Type == MsgDone {
		return nil, io.EOF
	}
	if msg.Type != MsgForwardInput && msg.Type != MsgForwardOutput {
		return nil, fmt.Errorf("expected forward message, got %v", msg.Type)
	}
	payload, ok := msg.Payload.(ForwardPayload)
	if !ok {
		return nil, fmt.Errorf("invalid forward payload type")
	}
	return &payload, nil
}
