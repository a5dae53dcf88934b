// Package handshake implements the client side of the MTProto 2.0
// authorization-key exchange.
//
// # Overview
//
// Three round trips take the client from nothing but a trusted RSA key set
// to a shared 2048-bit auth key and a server salt:
//
//  1. req_pq_multi → resPQ: the server answers with nonces, a PQ
//     factorization challenge and its RSA key fingerprints.
//  2. req_DH_params → server_DH_params_ok: the client proves the
//     factorization, smuggles its secret new nonce to the server under
//     RSA_PAD, and receives the DH group encrypted with keys derived from
//     the nonces.
//  3. set_client_DH_params → dh_gen_ok: the client sends g_b, both sides
//     derive g_ab, and the server acknowledges with a digest bound to the
//     new nonce and the key.
//
// # Usage
//
// A Handshake performs no I/O. Start returns the first payload; Handle
// consumes one server payload and returns either the next payload to send
// or the terminal Result.
//
//	h, _ := handshake.New(handshake.Config{DC: 2, Keys: ring})
//	first, _ := h.Start()
//	act, err := h.Handle(serverPayload) // act.Send or act.Result
//
// # Errors
//
// Steps fail with ErrInvalidState outside their turn and with a specific
// sentinel for each failed verification: nonce echoes, the answer digest,
// DH parameter validation, and the final acknowledgement hash.
//
// # Security notes
//
// Group validation follows the per-generator residue table, refuses primes
// that are not exactly 2048 bits, and confines public values to
// [2^1984, p-2^1984]; every check runs even after one fails. The client
// exponent, temporary AES material and the raw key bytes are wiped once out
// of use.
package handshake
