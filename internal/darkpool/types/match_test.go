package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionKeyIsUsableWhenActiveAndNotExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	k := &SessionKey{Status: SessionKeyActive, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, k.IsUsable(now))
}

func TestSessionKeyIsNotUsableWhenExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	k := &SessionKey{Status: SessionKeyActive, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, k.IsUsable(now), "expected an expired key to not be usable even while ACTIVE")
}

func TestSessionKeyIsNotUsableWhenPendingOrRevoked(t *testing.T) {
	now := time.Unix(1700000000, 0)
	future := now.Add(time.Hour)
	for _, status := range []SessionKeyStatus{SessionKeyPending, SessionKeyRevoked} {
		k := &SessionKey{Status: status, ExpiresAt: future}
		assert.Falsef(t, k.IsUsable(now), "expected a %s key to not be usable", status)
	}
}
