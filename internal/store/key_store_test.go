package store_test

import (
	"errors"
	"testing"
	"time"

	"kexgram/internal/domain"
	"kexgram/internal/store"
)

func testKey(first byte) domain.AuthKey {
	var value [256]byte
	value[0] = first
	value[255] = 0xAA
	return domain.NewAuthKey(value)
}

func TestKeys_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	pass := "pass"

	var ks domain.KeyStore = store.NewKeyFileStore(home)

	key2 := testKey(2)
	salt2 := domain.ServerSalt{Value: 0x1122334455667788, ValidSince: time.Now().Truncate(time.Second)}
	if err := ks.SaveKey(pass, 2, key2, salt2); err != nil {
		t.Fatalf("save dc 2: %v", err)
	}
	key4 := testKey(4)
	if err := ks.SaveKey(pass, 4, key4, domain.ServerSalt{Value: -1}); err != nil {
		t.Fatalf("save dc 4: %v", err)
	}

	got, gotSalt, ok, err := ks.LoadKey(pass, 2)
	if err != nil {
		t.Fatalf("load dc 2: %v", err)
	}
	if !ok {
		t.Fatal("dc 2 key missing after save")
	}
	if got.Value != key2.Value || got.ID != key2.ID {
		t.Fatal("dc 2 key changed across save/load")
	}
	if gotSalt.Value != salt2.Value || !gotSalt.ValidSince.Equal(salt2.ValidSince) {
		t.Fatalf("dc 2 salt changed across save/load: %+v", gotSalt)
	}

	all, err := ks.Keys(pass)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(all) != 2 || all[4].Value != key4.Value {
		t.Fatalf("listed %d keys", len(all))
	}
}

func TestKeys_TempKeyExpiryRoundTrips(t *testing.T) {
	home := t.TempDir()
	ks := store.NewKeyFileStore(home)

	var value [256]byte
	value[0] = 9
	key := domain.NewTempAuthKey(value, time.Hour)
	if err := ks.SaveKey("pass", 1, key, domain.ServerSalt{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _, ok, err := ks.LoadKey("pass", 1)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Permanent() {
		t.Fatal("temp key became permanent across save/load")
	}
	if !got.ExpiresAt.Equal(key.ExpiresAt) {
		t.Fatalf("expiry %v, want %v", got.ExpiresAt, key.ExpiresAt)
	}
}

func TestKeys_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	ks := store.NewKeyFileStore(home)

	if err := ks.SaveKey("correct", 1, testKey(1), domain.ServerSalt{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, _, err := ks.LoadKey("wrong", 1); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("load with wrong passphrase: %v, want ErrWrongPassphrase", err)
	}
}

func TestKeys_MissingFileAndDC(t *testing.T) {
	home := t.TempDir()
	ks := store.NewKeyFileStore(home)

	_, _, ok, err := ks.LoadKey("pass", 1)
	if err != nil {
		t.Fatalf("load from empty store: %v", err)
	}
	if ok {
		t.Fatal("empty store claims to hold a key")
	}

	all, err := ks.Keys("pass")
	if err != nil {
		t.Fatalf("list empty store: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("empty store listed %d keys", len(all))
	}

	if err := ks.SaveKey("pass", 2, testKey(2), domain.ServerSalt{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, ok, _ := ks.LoadKey("pass", 5); ok {
		t.Fatal("store claims a key for a dc never saved")
	}
}

func TestKeys_OverwriteKeepsLatest(t *testing.T) {
	home := t.TempDir()
	ks := store.NewKeyFileStore(home)

	if err := ks.SaveKey("pass", 2, testKey(1), domain.ServerSalt{Value: 1}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := ks.SaveKey("pass", 2, testKey(7), domain.ServerSalt{Value: 7}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, salt, ok, err := ks.LoadKey("pass", 2)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Value[0] != 7 || salt.Value != 7 {
		t.Fatal("overwrite did not keep the latest key")
	}
}
