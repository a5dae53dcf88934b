package crypto_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"math/big"
	"testing"

	"kexgram/internal/crypto"
	"kexgram/internal/tl"
)

// testRSAKey generates a 2048-bit key pair and returns the public half with
// the private key for undoing encryptions.
func testRSAKey(t *testing.T) (crypto.PublicKey, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	return crypto.PublicKey{N: priv.N, E: priv.E}, priv
}

func TestFingerprint_MatchesTLDerivation(t *testing.T) {
	pub, _ := testRSAKey(t)

	e := tl.NewEncoder()
	e.PutBytes(pub.N.Bytes())
	e.PutBytes(big.NewInt(int64(pub.E)).Bytes())
	sum := sha1.Sum(e.Bytes())
	want := int64(binary.LittleEndian.Uint64(sum[12:20]))

	if got := pub.Fingerprint(); got != want {
		t.Fatalf("Fingerprint: got %d, want %d", got, want)
	}
	if pub.Fingerprint() != pub.Fingerprint() {
		t.Fatal("Fingerprint is not stable")
	}
}

func TestParsePublicKeys_BothPEMForms(t *testing.T) {
	pub, priv := testRSAKey(t)

	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey),
	})
	pkixDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	pkix := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pkixDER})

	keys, err := crypto.ParsePublicKeys(append(pkcs1, pkix...))
	if err != nil {
		t.Fatalf("ParsePublicKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("parsed %d keys, want 2", len(keys))
	}
	for i, k := range keys {
		if k.Fingerprint() != pub.Fingerprint() {
			t.Fatalf("key %d fingerprint differs from source key", i)
		}
	}
}

func TestParsePublicKeys_NoKeys(t *testing.T) {
	if _, err := crypto.ParsePublicKeys([]byte("not pem at all")); err == nil {
		t.Fatal("ParsePublicKeys accepted garbage")
	}
}

func TestEncryptRaw_Bounds(t *testing.T) {
	pub, _ := testRSAKey(t)

	if _, err := pub.EncryptRaw(make([]byte, 255)); err == nil {
		t.Fatal("EncryptRaw accepted an undersized block")
	}

	// A block equal to the modulus itself must be rejected.
	atModulus := pub.N.FillBytes(make([]byte, pub.Size()))
	if _, err := pub.EncryptRaw(atModulus); err == nil {
		t.Fatal("EncryptRaw accepted a block equal to the modulus")
	}
}

func TestEncryptRaw_InvertsUnderPrivateKey(t *testing.T) {
	pub, priv := testRSAKey(t)

	block := make([]byte, pub.Size())
	block[0] = 0x01 // keep the value well below the modulus
	copy(block[1:], []byte("raw rsa payload"))

	ciphertext, err := pub.EncryptRaw(block)
	if err != nil {
		t.Fatalf("EncryptRaw: %v", err)
	}

	c := new(big.Int).SetBytes(ciphertext)
	m := new(big.Int).Exp(c, priv.D, priv.N)
	if !bytes.Equal(m.FillBytes(make([]byte, pub.Size())), block) {
		t.Fatal("private-key inversion does not recover the block")
	}
}

func TestEncryptPad_InvertsUnderPrivateKey(t *testing.T) {
	pub, priv := testRSAKey(t)
	payload := []byte("inner data payload bound to the exchange")

	ciphertext, err := pub.EncryptPad(payload, rand.Reader)
	if err != nil {
		t.Fatalf("EncryptPad: %v", err)
	}
	if len(ciphertext) != 256 {
		t.Fatalf("ciphertext is %d bytes, want 256", len(ciphertext))
	}

	// Undo the RSA layer, then the RSA_PAD layers: unmask the ephemeral
	// key, decrypt the AES-IGE body, undo the byte reversal and check the
	// binding hash.
	c := new(big.Int).SetBytes(ciphertext)
	block := new(big.Int).Exp(c, priv.D, priv.N).FillBytes(make([]byte, 256))

	maskedKey, encrypted := block[:32], block[32:]
	mask := sha256.Sum256(encrypted)
	tempKey := make([]byte, 32)
	for i := range tempKey {
		tempKey[i] = maskedKey[i] ^ mask[i]
	}

	var zeroIV [32]byte
	dataWithHash, err := crypto.DecryptIGE(tempKey, zeroIV[:], encrypted)
	if err != nil {
		t.Fatalf("DecryptIGE: %v", err)
	}

	reversed, bindingHash := dataWithHash[:192], dataWithHash[192:]
	padded := make([]byte, 192)
	for i := range padded {
		padded[i] = reversed[191-i]
	}

	h := sha256.New()
	h.Write(tempKey)
	h.Write(padded)
	if !bytes.Equal(h.Sum(nil), bindingHash) {
		t.Fatal("binding hash mismatch after unwrapping")
	}
	if !bytes.Equal(padded[:len(payload)], payload) {
		t.Fatalf("payload not recovered: got %x", padded[:len(payload)])
	}
}

func TestEncryptPad_RejectsOversizedPayload(t *testing.T) {
	pub, _ := testRSAKey(t)
	if _, err := pub.EncryptPad(make([]byte, 145), rand.Reader); err == nil {
		t.Fatal("EncryptPad accepted a payload above 144 bytes")
	}
}

func TestKeyring_FindHonorsServerOrder(t *testing.T) {
	first, _ := testRSAKey(t)
	second, _ := testRSAKey(t)
	ring := crypto.NewKeyring(first, second)

	// The server's preference order decides, not insertion order.
	got, ok := ring.Find([]int64{second.Fingerprint(), first.Fingerprint()})
	if !ok {
		t.Fatal("Find: no key found")
	}
	if got.Fingerprint() != second.Fingerprint() {
		t.Fatal("Find ignored the requested order")
	}

	if _, ok := ring.Find([]int64{12345}); ok {
		t.Fatal("Find matched an unknown fingerprint")
	}
	if ring.Len() != 2 || len(ring.Fingerprints()) != 2 {
		t.Fatalf("ring bookkeeping wrong: len=%d", ring.Len())
	}
}
