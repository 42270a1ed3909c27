// Package ckkswrapper holds the CKKS keys and helpers shared by the split
// inference client and server.
package ckkswrapper

import (
	"github.com/pkg/errors"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// DefaultLogN is the ring dimension used when none is configured.
const DefaultLogN = 13

// HeContext owns the client-side key material. The secret key never leaves
// it; a server only ever needs the parameters.
type HeContext struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor
}

// ServerKit is what the evaluating party holds: parameters and an evaluator
// without relinearization or rotation keys. Weighted sums of ciphertexts by
// plaintext constants need neither.
type ServerKit struct {
	Params    hefloat.Parameters
	Evaluator *hefloat.Evaluator
}

// NewParameters returns a two-level modulus chain: one level is spent on the
// plaintext weight multiplication, the other is the one decrypted.
func NewParameters(logN int) (hefloat.Parameters, error) {
	params, err := hefloat.NewParametersFromLiteral(hefloat.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 40},
		LogP:            []int{61},
		LogDefaultScale: 40,
	})
	if err != nil {
		return hefloat.Parameters{}, errors.Wrapf(err, "ckks parameters for logN=%d", logN)
	}
	return params, nil
}

// NewHeContext generates fresh keys for the given ring dimension.
func NewHeContext(logN int) (*HeContext, error) {
	params, err := NewParameters(logN)
	if err != nil {
		return nil, err
	}
	return NewHeContextFromParameters(params), nil
}

// NewHeContextFromParameters generates fresh keys for params.
func NewHeContextFromParameters(params hefloat.Parameters) *HeContext {
	kgen := hefloat.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	return &HeContext{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Encryptor: hefloat.NewEncryptor(params, pk),
		Decryptor: hefloat.NewDecryptor(params, sk),
	}
}

// NewServerKit builds an evaluator from parameters alone.
func NewServerKit(params hefloat.Parameters) *ServerKit {
	return &ServerKit{
		Params:    params,
		Evaluator: hefloat.NewEvaluator(params, nil),
	}
}

// EncryptValue encrypts v in the first slot at the maximum level.
func (h *HeContext) EncryptValue(v float64) (*rlwe.Ciphertext, error) {
	pt := hefloat.NewPlaintext(h.Params, h.Params.MaxLevel())
	if err := h.Encoder.Encode([]float64{v}, pt); err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	ct, err := h.Encryptor.EncryptNew(pt)
	if err != nil {
		return nil, errors.Wrap(err, "encrypt")
	}
	return ct, nil
}

// EncryptValues encrypts each value into its own ciphertext.
func (h *HeContext) EncryptValues(values []float64) ([]*rlwe.Ciphertext, error) {
	cts := make([]*rlwe.Ciphertext, len(values))
	for i, v := range values {
		ct, err := h.EncryptValue(v)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		cts[i] = ct
	}
	return cts, nil
}

// DecryptValue returns the real part of the first slot.
func (h *HeContext) DecryptValue(ct *rlwe.Ciphertext) (float64, error) {
	pt := h.Decryptor.DecryptNew(ct)
	values := make([]complex128, h.Params.MaxSlots())
	if err := h.Encoder.Decode(pt, values); err != nil {
		return 0, errors.Wrap(err, "decode")
	}
	return real(values[0]), nil
}

// WeightedSum returns Σ weights[i]·cts[i], rescaled once. Every input must
// sit at the same level with at least one level left.
//
// Each weight goes in as a one-slot vector, which the evaluator encodes at
// the scale of the prime the rescale drops, so the sum comes back at the
// input scale. A bare scalar weight that happens to be an integer would be
// multiplied unscaled.
func (k *ServerKit) WeightedSum(cts []*rlwe.Ciphertext, weights []float64) (*rlwe.Ciphertext, error) {
	if len(cts) != len(weights) {
		return nil, errors.Errorf("%d ciphertexts for %d weights", len(cts), len(weights))
	}
	if len(cts) == 0 {
		return nil, errors.New("weighted sum of no ciphertexts")
	}
	level := cts[0].Level()
	for i, ct := range cts {
		if NeedsRefresh(ct, 0) {
			return nil, errors.Errorf("ciphertext %d at level %d, need at least 1", i, ct.Level())
		}
		if ct.Level() != level {
			return nil, errors.Errorf("ciphertext %d at level %d, others at %d", i, ct.Level(), level)
		}
	}

	var acc *rlwe.Ciphertext
	for i, ct := range cts {
		term, err := k.Evaluator.MulNew(ct, []float64{weights[i]})
		if err != nil {
			return nil, errors.Wrapf(err, "multiply term %d", i)
		}
		if acc == nil {
			acc = term
			continue
		}
		if err := k.Evaluator.Add(acc, term, acc); err != nil {
			return nil, errors.Wrapf(err, "add term %d", i)
		}
	}
	if err := k.Evaluator.Rescale(acc, acc); err != nil {
		return nil, errors.Wrap(err, "rescale")
	}
	return acc, nil
}

// NeedsRefresh reports whether ct has at most threshold levels left. With a
// threshold of 0 it flags ciphertexts that can no longer absorb a
// WeightedSum; only the key holder can bring them back up by re-encrypting.
func NeedsRefresh(ct *rlwe.Ciphertext, threshold int) bool {
	if threshold < 0 {
		threshold = 0
	}
	return ct.Level() <= threshold
}
