package crypto

import "crypto/sha1"

// DeriveTempKeys derives the AES key and IV protecting the DH-parameter leg
// of the exchange. Both sides compute the same pair from the server nonce
// and the client's secret new nonce:
//
//	key = SHA1(new ‖ server) + SHA1(server ‖ new)[0:12]
//	iv  = SHA1(server ‖ new)[12:20] + SHA1(new ‖ new) + new[0:4]
func DeriveTempKeys(serverNonce [16]byte, newNonce [32]byte) (key, iv [32]byte) {
	newServer := sha1.Sum(concat(newNonce[:], serverNonce[:]))
	serverNew := sha1.Sum(concat(serverNonce[:], newNonce[:]))
	newNew := sha1.Sum(concat(newNonce[:], newNonce[:]))

	copy(key[:20], newServer[:])
	copy(key[20:], serverNew[:12])

	copy(iv[:8], serverNew[12:])
	copy(iv[8:28], newNew[:])
	copy(iv[28:], newNonce[:4])
	return key, iv
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
