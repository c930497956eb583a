package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaultsFillsMatcherAndSettlementTuning(t *testing.T) {
	c := &Config{}
	setDefaults(c)

	assert.Equal(t, 4, c.Matcher.Workers)
	assert.Equal(t, 1024, c.Matcher.OrderChannelSize)
	assert.Equal(t, 2000, c.Settlement.PollIntervalMs)
	assert.Equal(t, 10, c.Settlement.BatchSize)
}

func TestSetDefaultsLeavesChainAddressesEmpty(t *testing.T) {
	c := &Config{}
	setDefaults(c)

	assert.Empty(t, c.Chain.RouterAddress, "expected router address to default empty, signaling test mode")
	assert.Empty(t, c.Chain.CustodyAddress, "expected custody address to default empty, signaling test mode")
	assert.NotEmpty(t, c.Chain.SnarkScalarField, "expected a default snark scalar field")
}

func TestSetDefaultsFillsGatewayHostPort(t *testing.T) {
	c := &Config{}
	setDefaults(c)

	assert.Equal(t, "0.0.0.0", c.Gateway.Host)
	assert.Equal(t, 8080, c.Gateway.Port)
}
