package domain_test

import (
	"crypto/sha1"
	"encoding/binary"
	"testing"
	"time"

	"kexgram/internal/domain"
)

func TestNewAuthKey_IDDerivation(t *testing.T) {
	var value [256]byte
	for i := range value {
		value[i] = byte(i)
	}

	key := domain.NewAuthKey(value)

	sum := sha1.Sum(value[:])
	want := int64(binary.LittleEndian.Uint64(sum[12:20]))
	if key.ID != want {
		t.Fatalf("ID: got %d, want %d", key.ID, want)
	}
	if !key.Permanent() {
		t.Fatal("permanent key reports an expiry")
	}
}

func TestNewTempAuthKey_Expiry(t *testing.T) {
	var value [256]byte
	value[0] = 0x42

	key := domain.NewTempAuthKey(value, time.Hour)

	if key.Permanent() {
		t.Fatal("temporary key reports permanent")
	}
	if key.Expired(time.Now()) {
		t.Fatal("fresh temporary key reports expired")
	}
	if !key.Expired(time.Now().Add(2 * time.Hour)) {
		t.Fatal("temporary key survives past its lifetime")
	}
	if key.ID != domain.KeyID(value) {
		t.Fatal("temporary key id differs from derivation")
	}
}

func TestAuthKey_Zero(t *testing.T) {
	var value [256]byte
	value[10] = 0xff

	key := domain.NewAuthKey(value)
	key.Zero()

	if key.ID != 0 {
		t.Fatal("Zero left the id in place")
	}
	for i, b := range key.Value {
		if b != 0 {
			t.Fatalf("Zero left byte %d set", i)
		}
	}
}
