package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// IGE chains both the previous ciphertext and the previous plaintext block
// into each encryption, so the IV is two blocks wide.

// EncryptIGE encrypts plaintext with AES-256 in IGE mode. The key must be
// 32 bytes, the IV 32 bytes, and the plaintext a multiple of the AES block
// size.
func EncryptIGE(key, iv, plaintext []byte) ([]byte, error) {
	block, err := igeCipher(key, iv, len(plaintext))
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(plaintext))
	prevCipher := iv[:aes.BlockSize]
	prevPlain := iv[aes.BlockSize:]
	var x [aes.BlockSize]byte
	for i := 0; i < len(plaintext); i += aes.BlockSize {
		p := plaintext[i : i+aes.BlockSize]
		c := out[i : i+aes.BlockSize]
		for j := range x {
			x[j] = p[j] ^ prevCipher[j]
		}
		block.Encrypt(c, x[:])
		for j := range c {
			c[j] ^= prevPlain[j]
		}
		prevCipher = c
		prevPlain = p
	}
	return out, nil
}

// DecryptIGE reverses EncryptIGE under the same key and IV.
func DecryptIGE(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := igeCipher(key, iv, len(ciphertext))
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	prevCipher := iv[:aes.BlockSize]
	prevPlain := iv[aes.BlockSize:]
	var x [aes.BlockSize]byte
	for i := 0; i < len(ciphertext); i += aes.BlockSize {
		c := ciphertext[i : i+aes.BlockSize]
		p := out[i : i+aes.BlockSize]
		for j := range x {
			x[j] = c[j] ^ prevPlain[j]
		}
		block.Decrypt(p, x[:])
		for j := range p {
			p[j] ^= prevCipher[j]
		}
		prevCipher = c
		prevPlain = p
	}
	return out, nil
}

func igeCipher(key, iv []byte, dataLen int) (cipher.Block, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: ige key must be 32 bytes, got %d", len(key))
	}
	if len(iv) != 2*aes.BlockSize {
		return nil, fmt.Errorf("crypto: ige iv must be %d bytes, got %d", 2*aes.BlockSize, len(iv))
	}
	if dataLen%aes.BlockSize != 0 {
		return nil, fmt.Errorf("crypto: ige data length %d is not a multiple of %d", dataLen, aes.BlockSize)
	}
	return aes.NewCipher(key)
}
