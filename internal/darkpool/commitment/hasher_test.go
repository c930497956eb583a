package commitment

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScalarField() *big.Int {
	f, _ := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	return f
}

func TestHashIsDeterministic(t *testing.T) {
	h := NewPoseidonStub()
	inputs := [7]*big.Int{
		big.NewInt(1), big.NewInt(2), big.NewInt(3),
		big.NewInt(4), big.NewInt(5), big.NewInt(6), big.NewInt(7),
	}
	field := testScalarField()

	first := h.Hash(inputs, field)
	second := h.Hash(inputs, field)
	assert.Zero(t, first.Cmp(second), "expected identical inputs to hash to the same value")
}

func TestHashDiffersForDifferentInputs(t *testing.T) {
	h := NewPoseidonStub()
	field := testScalarField()

	a := h.Hash([7]*big.Int{big.NewInt(1), big.NewInt(2), nil, nil, nil, nil, nil}, field)
	b := h.Hash([7]*big.Int{big.NewInt(1), big.NewInt(3), nil, nil, nil, nil, nil}, field)
	assert.NotZero(t, a.Cmp(b), "expected different inputs to hash to different values")
}

func TestHashToleratesNilInputs(t *testing.T) {
	h := NewPoseidonStub()
	field := testScalarField()

	got := h.Hash([7]*big.Int{nil, nil, nil, nil, nil, nil, nil}, field)
	require.NotNil(t, got)
}

func TestHashStaysWithinScalarField(t *testing.T) {
	h := NewPoseidonStub()
	field := testScalarField()

	inputs := [7]*big.Int{
		new(big.Int).Lsh(big.NewInt(1), 300),
		new(big.Int).Lsh(big.NewInt(1), 300),
		nil, nil, nil, nil, nil,
	}
	got := h.Hash(inputs, field)
	assert.Equal(t, -1, got.Cmp(field), "expected result to stay below the scalar field")
}
