package crypto

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// SplitPQ factors the server-supplied product of two primes, returning the
// factors in ascending order as minimal big-endian bytes. The product must
// fit in 64 bits; the protocol guarantees that.
func SplitPQ(pq []byte) (p, q []byte, err error) {
	if len(pq) == 0 || len(pq) > 8 {
		return nil, nil, fmt.Errorf("crypto: pq must be 1..8 bytes, got %d", len(pq))
	}
	var n uint64
	for _, b := range pq {
		n = n<<8 | uint64(b)
	}

	f := findFactor(n)
	if f == 0 {
		return nil, nil, fmt.Errorf("crypto: %d has no nontrivial factor", n)
	}
	a, b := f, n/f
	if a > b {
		a, b = b, a
	}
	return minimalBE(a), minimalBE(b), nil
}

// findFactor returns a nontrivial divisor of n, or 0 when none was found
// (n prime, zero, one, or a rho run that never split it).
func findFactor(n uint64) uint64 {
	if n < 4 {
		return 0
	}
	if n%2 == 0 {
		return 2
	}
	for c := uint64(1); c <= 64; c++ {
		if f := pollardRho(n, c); f != 0 {
			return f
		}
	}
	return 0
}

// pollardRho runs Pollard's rho with x -> x*x + c, Floyd cycle detection.
func pollardRho(n, c uint64) uint64 {
	const maxSteps = 1 << 20

	step := func(x uint64) uint64 {
		return addMod(mulMod(x, x, n), c, n)
	}

	x, y := uint64(2), uint64(2)
	for i := 0; i < maxSteps; i++ {
		x = step(x)
		y = step(step(y))
		if x == y {
			return 0 // cycle closed without finding a factor
		}
		diff := x - y
		if y > x {
			diff = y - x
		}
		if d := gcd(diff, n); d != 1 && d != n {
			return d
		}
	}
	return 0
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

func addMod(a, b, m uint64) uint64 {
	a %= m
	b %= m
	if a >= m-b {
		return a - (m - b)
	}
	return a + b
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func minimalBE(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return append([]byte(nil), buf[i:]...)
}
