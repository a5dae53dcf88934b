package domain

import (
	"crypto/sha1"
	"encoding/binary"
	"time"

	"kexgram/internal/util/memzero"
)

// AuthKey is a negotiated 2048-bit authorization key together with its
// derived identifier. Temporary keys additionally carry an expiry.
type AuthKey struct {
	Value     [256]byte `json:"value"`
	ID        int64     `json:"id"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewAuthKey returns a permanent key with its derived id.
func NewAuthKey(value [256]byte) AuthKey {
	return AuthKey{Value: value, ID: KeyID(value)}
}

// NewTempAuthKey returns a key bound to a lifetime of ttl from now.
func NewTempAuthKey(value [256]byte, ttl time.Duration) AuthKey {
	k := NewAuthKey(value)
	k.ExpiresAt = time.Now().Add(ttl)
	return k
}

// KeyID derives the 64-bit key identifier: the trailing eight bytes of
// SHA1(key), read little-endian.
func KeyID(value [256]byte) int64 {
	sum := sha1.Sum(value[:])
	return int64(binary.LittleEndian.Uint64(sum[12:20]))
}

// Permanent reports whether the key has no expiry.
func (k AuthKey) Permanent() bool { return k.ExpiresAt.IsZero() }

// Expired reports whether a temporary key is past its lifetime.
func (k AuthKey) Expired(now time.Time) bool {
	return !k.Permanent() && now.After(k.ExpiresAt)
}

// Zero wipes the key material in place.
func (k *AuthKey) Zero() {
	memzero.Zero(k.Value[:])
	k.ID = 0
}
