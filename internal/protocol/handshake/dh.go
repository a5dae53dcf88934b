package handshake

import (
	"fmt"
	"io"
	"math/big"

	"kexgram/internal/util/memzero"
)

// maxSecretAttempts bounds the rejection sampling of the client secret.
// Each draw lands in range with probability above one half, so running out
// means the random source is broken.
const maxSecretAttempts = 64

// computeDHKeys draws the client secret b, returning the public value
// g^b mod p and the shared key (g_a)^b mod p left-padded to 256 bytes.
func computeDHKeys(g int32, dhPrime, ga []byte, rnd io.Reader) (gb []byte, authKey [256]byte, err error) {
	p := new(big.Int).SetBytes(dhPrime)
	gaInt := new(big.Int).SetBytes(ga)
	gInt := big.NewInt(int64(g))

	one := big.NewInt(1)
	pMinusOne := new(big.Int).Sub(p, one)

	raw := make([]byte, 256)
	defer memzero.Zero(raw)

	for attempt := 0; attempt < maxSecretAttempts; attempt++ {
		if _, err := io.ReadFull(rnd, raw); err != nil {
			return nil, authKey, err
		}
		b := new(big.Int).SetBytes(raw)
		if b.Cmp(one) <= 0 || b.Cmp(pMinusOne) >= 0 {
			memzero.Big(b)
			continue
		}

		gbInt := new(big.Int).Exp(gInt, b, p)
		if !inSafeRange(gbInt, p) {
			memzero.Big(b)
			continue
		}

		shared := new(big.Int).Exp(gaInt, b, p)
		shared.FillBytes(authKey[:])
		gb = gbInt.Bytes()

		memzero.Big(b)
		memzero.Big(shared)
		return gb, authKey, nil
	}
	return nil, authKey, fmt.Errorf("%w: no acceptable client secret after %d draws", ErrDHValidation, maxSecretAttempts)
}
