package metrics

import (
	"testing"
	"time"
)

// New registers every metric against the default Prometheus registry.
// Constructing a second Collector in the same test binary would panic on
// duplicate registration, so this file exercises a single shared instance.
var testCollector = New()

func TestRecordAdmissionDoesNotPanic(t *testing.T) {
	testCollector.RecordAdmission("ETH", "USDC", "BUY", 5*time.Millisecond)
}

func TestRecordRejectionDoesNotPanic(t *testing.T) {
	testCollector.RecordRejection("COMMITMENT_MISMATCH")
}

func TestRecordMatchDoesNotPanic(t *testing.T) {
	testCollector.RecordMatch("ETH", "USDC", 3)
}

func TestRecordSettledDoesNotPanic(t *testing.T) {
	testCollector.RecordSettled(200 * time.Millisecond)
}

func TestRecordSettlementFailureDoesNotPanic(t *testing.T) {
	testCollector.RecordSettlementFailure("ON_CHAIN_REVERTED")
}

func TestSetPendingMatchesDoesNotPanic(t *testing.T) {
	testCollector.SetPendingMatches(42)
}

func TestRecordCoordinatorRPCDoesNotPanic(t *testing.T) {
	testCollector.RecordCoordinatorRPC("ListChannels", "ok", 10*time.Millisecond)
	testCollector.RecordCoordinatorRPC("ListChannels", "error", 10*time.Millisecond)
}

func TestSetEngineConnectedTogglesGauge(t *testing.T) {
	testCollector.SetEngineConnected(true)
	testCollector.SetEngineConnected(false)
}
