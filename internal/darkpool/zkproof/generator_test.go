package zkproof

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublicInputs(timestamp int64) PublicInputs {
	return PublicInputs{
		BuyCommitmentHash:  big.NewInt(111),
		SellCommitmentHash: big.NewInt(222),
		BuyFillAmount:      big.NewInt(10),
		SellFillAmount:     big.NewInt(10),
		BuySettledSoFar:    big.NewInt(0),
		SellSettledSoFar:   big.NewInt(0),
		Timestamp:          timestamp,
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewPlaceholderGenerator()
	public := testPublicInputs(1700000000)

	first, err := g.Generate(PrivateInputs{}, public)
	require.NoError(t, err)
	second, err := g.Generate(PrivateInputs{}, public)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateDiffersWhenPublicInputsDiffer(t *testing.T) {
	g := NewPlaceholderGenerator()

	a, err := g.Generate(PrivateInputs{}, testPublicInputs(1700000000))
	require.NoError(t, err)
	b, err := g.Generate(PrivateInputs{}, testPublicInputs(1700000001))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateIgnoresPrivateInputs(t *testing.T) {
	g := NewPlaceholderGenerator()
	public := testPublicInputs(1700000000)

	withPrivate, err := g.Generate(PrivateInputs{
		BuyOrderDetail:  []*big.Int{big.NewInt(1), big.NewInt(2)},
		SellOrderDetail: []*big.Int{big.NewInt(3)},
	}, public)
	require.NoError(t, err)
	withoutPrivate, err := g.Generate(PrivateInputs{}, public)
	require.NoError(t, err)
	assert.Equal(t, withoutPrivate, withPrivate, "expected proof to be a pure function of public inputs for this placeholder")
}
