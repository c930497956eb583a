// Package commitment models the on-chain order-commitment hash as an
// opaque function (spec §9: "the core itself is agnostic to the hash,
// treating it as an opaque function... nested Poseidon at 3/5 inputs").
// No Poseidon or other SNARK-friendly hash library exists anywhere in the
// retrieved example corpus; the placeholder below preserves the field
// shape (seven inputs folded to one field element) without claiming
// cryptographic soundness.
package commitment

import "math/big"

// Hasher computes the commitment hash bound on-chain to an order's detail
// tuple. Implementations are expected to match the on-chain circuit
// exactly; this package only fixes the Go-side interface.
type Hasher interface {
	Hash(inputs [7]*big.Int, scalarField *big.Int) *big.Int
}

// PoseidonStub is a placeholder Hasher standing in for the real nested
// Poseidon-at-3/5-inputs circuit. It folds the seven inputs through
// repeated big.Int multiplication modulo the scalar field, preserving the
// interface's shape for the rest of the core to exercise without
// depending on a real SNARK-hash implementation.
type PoseidonStub struct{}

// NewPoseidonStub constructs the placeholder hasher.
func NewPoseidonStub() *PoseidonStub {
	return &PoseidonStub{}
}

func (PoseidonStub) Hash(inputs [7]*big.Int, scalarField *big.Int) *big.Int {
	acc := big.NewInt(1)
	tmp := new(big.Int)
	for _, in := range inputs {
		if in == nil {
			continue
		}
		tmp.Mul(acc, in)
		tmp.Add(tmp, big.NewInt(1))
		acc.Mod(tmp, scalarField)
	}
	return acc
}
