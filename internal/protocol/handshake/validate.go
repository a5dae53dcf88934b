package handshake

import (
	"fmt"
	"math/big"
)

// safeRangeBound is 2^(2048-64). Public DH values closer than this to the
// group edges leak key bits and are refused; the bounds themselves are
// still acceptable.
var safeRangeBound = new(big.Int).Lsh(big.NewInt(1), 2048-64)

// CheckDHParams validates the server's group parameters and public value.
// Every check runs regardless of earlier failures, so the work done does
// not reveal which one tripped.
func CheckDHParams(g int32, dhPrime, ga []byte) error {
	ok := true
	ok = (len(dhPrime) == 256 && dhPrime[0]&0x80 != 0) && ok // exactly 2048 bits
	ok = (len(ga) > 0 && len(ga) <= 256) && ok

	p := new(big.Int).SetBytes(dhPrime)
	gaInt := new(big.Int).SetBytes(ga)

	ok = residueOK(g, p) && ok
	ok = inSafeRange(gaInt, p) && ok

	if !ok {
		return fmt.Errorf("%w: g=%d", ErrDHValidation, g)
	}
	return nil
}

// residueOK applies the per-generator congruence condition guaranteeing g
// generates a large subgroup mod p.
func residueOK(g int32, p *big.Int) bool {
	switch g {
	case 2:
		return rem(p, 8) == 7
	case 3:
		return rem(p, 3) == 2
	case 4:
		return true
	case 5:
		r := rem(p, 5)
		return r == 1 || r == 4
	case 6:
		r := rem(p, 24)
		return r == 19 || r == 23
	case 7:
		r := rem(p, 7)
		return r == 3 || r == 5 || r == 6
	default:
		return false
	}
}

func rem(p *big.Int, m int64) int64 {
	return new(big.Int).Mod(p, big.NewInt(m)).Int64()
}

// inSafeRange reports 2^(2048-64) <= v <= p - 2^(2048-64), both edges
// included.
func inSafeRange(v, p *big.Int) bool {
	if v.Cmp(safeRangeBound) < 0 {
		return false
	}
	upper := new(big.Int).Sub(p, safeRangeBound)
	return v.Cmp(upper) <= 0
}
