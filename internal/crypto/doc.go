// Package crypto exposes the primitives the key exchange composes.
//
// Contents
//
//   - AES-256 in IGE mode, the block chaining MTProto uses for the
//     handshake payloads (EncryptIGE, DecryptIGE)
//   - The nonce KDF producing the temporary AES key and IV for the
//     DH-parameter leg (DeriveTempKeys)
//   - Factorization of the server's PQ challenge (SplitPQ)
//   - RSA public keys with TL fingerprints, textbook encryption and the
//     RSA_PAD anti-oracle encoding (PublicKey, Keyring)
//
// # Notes
//
// Functions here are deterministic given their inputs; randomness is always
// passed in as an io.Reader so callers can pin it in tests. Temporary key
// material is wiped before returning where practical.
package crypto
