package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// CreateSessionKey persists a new session key in status PENDING.
func (s *Store) CreateSessionKey(ctx context.Context, k *types.SessionKey) error {
	row := toSessionKeyRow(k)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return derrors.Wrap(err, derrors.Fatal, "create session key")
	}
	return nil
}

// ActivateSessionKey transitions a session key from PENDING to ACTIVE,
// caching the bearer token obtained from the coordinator's auth flow.
// Revokes any other ACTIVE key for the same (owner, application) pair
// first, inside the same transaction, enforcing the at-most-one-ACTIVE
// invariant.
func (s *Store) ActivateSessionKey(ctx context.Context, k *types.SessionKey, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&sessionKeyRow{}).
			Where("owner = ? AND application = ? AND status = ?", k.Owner, k.Application, string(types.SessionKeyActive)).
			Update("status", string(types.SessionKeyRevoked)).Error; err != nil {
			return err
		}
		res := tx.Model(&sessionKeyRow{}).
			Where("id = ? AND status = ?", k.ID, string(types.SessionKeyPending)).
			Updates(map[string]interface{}{
				"status":       string(types.SessionKeyActive),
				"cached_token": token,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return derrors.New(derrors.Conflict, "session key not in PENDING status")
		}
		return nil
	})
}

// RevokeSessionKey transitions a session key to REVOKED, regardless of its
// current status, so an operator can force a reconnect's re-auth.
func (s *Store) RevokeSessionKey(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&sessionKeyRow{}).
		Where("id = ?", id).
		Update("status", string(types.SessionKeyRevoked))
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "revoke session key")
	}
	return nil
}

// GetSessionKey loads a session key by id, regardless of status, for the
// gateway's activate/revoke endpoints.
func (s *Store) GetSessionKey(ctx context.Context, id uuid.UUID) (*types.SessionKey, error) {
	var row sessionKeyRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, derrors.Wrap(err, derrors.ValidationError, "session key not found")
	}
	return fromSessionKeyRow(row), nil
}

// GetActiveSessionKey loads the single ACTIVE session key for an
// (owner, application) pair, if any and not expired.
func (s *Store) GetActiveSessionKey(ctx context.Context, owner, application string, now time.Time) (*types.SessionKey, bool, error) {
	var row sessionKeyRow
	err := s.db.WithContext(ctx).
		Where("owner = ? AND application = ? AND status = ? AND expires_at > ?",
			owner, application, string(types.SessionKeyActive), now).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, derrors.Wrap(err, derrors.Fatal, "get active session key")
	}
	return fromSessionKeyRow(row), true, nil
}
