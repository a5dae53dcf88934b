package crypto

import (
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"

	"kexgram/internal/tl"
	"kexgram/internal/util/memzero"
)

const (
	// rsaPadPayloadMax is the largest payload RSA_PAD can carry.
	rsaPadPayloadMax = 144
	// rsaPadBlockLen is the payload length after random padding.
	rsaPadBlockLen = 192
	// rsaPadAttempts bounds the search for a block below the modulus.
	rsaPadAttempts = 10
)

// PublicKey is an RSA public key the client trusts for the handshake.
type PublicKey struct {
	N *big.Int
	E int
}

// ParsePublicKeys reads every PEM block in data as an RSA public key,
// accepting both PKCS#1 ("RSA PUBLIC KEY") and PKIX ("PUBLIC KEY") forms.
func ParsePublicKeys(data []byte) ([]PublicKey, error) {
	var keys []PublicKey
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		key, err := parsePEMBlock(block)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("crypto: no PEM public keys found")
	}
	return keys, nil
}

func parsePEMBlock(block *pem.Block) (PublicKey, error) {
	if k, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return PublicKey{N: k.N, E: k.E}, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return PublicKey{}, fmt.Errorf("crypto: parsing %q block: %w", block.Type, err)
	}
	k, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return PublicKey{}, fmt.Errorf("crypto: %q block is not an RSA key", block.Type)
	}
	return PublicKey{N: k.N, E: k.E}, nil
}

// Size returns the modulus size in bytes.
func (k PublicKey) Size() int { return (k.N.BitLen() + 7) / 8 }

// Fingerprint returns the TL fingerprint of the key: the low eight bytes,
// little-endian, of SHA1 over the TL serialization of modulus and exponent.
func (k PublicKey) Fingerprint() int64 {
	e := tl.NewEncoder()
	e.PutBytes(k.N.Bytes())
	e.PutBytes(big.NewInt(int64(k.E)).Bytes())
	sum := sha1.Sum(e.Bytes())
	return int64(binary.LittleEndian.Uint64(sum[12:20]))
}

// EncryptRaw performs textbook RSA on a block exactly the size of the
// modulus. The block, read as a big-endian integer, must be below N.
func (k PublicKey) EncryptRaw(block []byte) ([]byte, error) {
	if len(block) != k.Size() {
		return nil, fmt.Errorf("crypto: rsa block is %d bytes, key takes %d", len(block), k.Size())
	}
	m := new(big.Int).SetBytes(block)
	if m.Cmp(k.N) >= 0 {
		return nil, fmt.Errorf("crypto: rsa block is not below the modulus")
	}
	c := new(big.Int).Exp(m, big.NewInt(int64(k.E)), k.N)
	out := c.FillBytes(make([]byte, k.Size()))
	memzero.Big(m)
	return out, nil
}

// EncryptPad implements the RSA_PAD encoding of MTProto 2.0. The payload is
// padded to 192 bytes, reversed and bound to an ephemeral AES key by a
// SHA-256, encrypted with AES-IGE, and the ephemeral key is masked by a hash
// of the ciphertext. The search retries until the resulting 256-byte block
// is numerically below the modulus, so the server cannot be used as a
// decryption oracle for arbitrary RSA inputs.
func (k PublicKey) EncryptPad(payload []byte, rnd io.Reader) ([]byte, error) {
	if len(payload) > rsaPadPayloadMax {
		return nil, fmt.Errorf("crypto: rsa pad payload is %d bytes, max %d", len(payload), rsaPadPayloadMax)
	}
	if k.Size() != 256 {
		return nil, fmt.Errorf("crypto: rsa pad needs a 2048-bit key, got %d bits", k.N.BitLen())
	}

	padded := make([]byte, rsaPadBlockLen)
	copy(padded, payload)
	if _, err := io.ReadFull(rnd, padded[len(payload):]); err != nil {
		return nil, err
	}
	defer memzero.Zero(padded)

	var zeroIV [32]byte
	for attempt := 0; attempt < rsaPadAttempts; attempt++ {
		var tempKey [32]byte
		if _, err := io.ReadFull(rnd, tempKey[:]); err != nil {
			return nil, err
		}

		dataWithHash := make([]byte, 0, rsaPadBlockLen+sha256.Size)
		for i := rsaPadBlockLen - 1; i >= 0; i-- {
			dataWithHash = append(dataWithHash, padded[i])
		}
		h := sha256.New()
		h.Write(tempKey[:])
		h.Write(padded)
		dataWithHash = h.Sum(dataWithHash)

		encrypted, err := EncryptIGE(tempKey[:], zeroIV[:], dataWithHash)
		if err != nil {
			return nil, err
		}
		memzero.Zero(dataWithHash)

		mask := sha256.Sum256(encrypted)
		block := make([]byte, 0, k.Size())
		for i := range tempKey {
			block = append(block, tempKey[i]^mask[i])
		}
		block = append(block, encrypted...)
		memzero.Zero(tempKey[:])

		if new(big.Int).SetBytes(block).Cmp(k.N) < 0 {
			return k.EncryptRaw(block)
		}
	}
	return nil, fmt.Errorf("crypto: rsa pad found no block below the modulus in %d attempts", rsaPadAttempts)
}
