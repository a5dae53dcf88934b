package handshake

import "errors"

var (
	// ErrInvalidState is returned when a step runs outside its turn.
	ErrInvalidState = errors.New("handshake: step does not match current state")
	// ErrNonceMismatch is returned when a server message echoes a nonce
	// that is not ours.
	ErrNonceMismatch = errors.New("handshake: nonce mismatch")
	// ErrServerNonceMismatch is returned when the server nonce echo
	// differs from the recorded one.
	ErrServerNonceMismatch = errors.New("handshake: server nonce mismatch")
	// ErrNewNonceHashMismatch is returned when the final acknowledgement
	// digest does not match the derived key.
	ErrNewNonceHashMismatch = errors.New("handshake: new nonce hash mismatch")
	// ErrFactorization is returned when the PQ challenge cannot be split.
	ErrFactorization = errors.New("handshake: pq factorization failed")
	// ErrRSAKeyNotFound is returned when no offered fingerprint matches a
	// trusted key.
	ErrRSAKeyNotFound = errors.New("handshake: no trusted rsa key among server fingerprints")
	// ErrRSAEncryption is returned when the RSA_PAD encoding fails.
	ErrRSAEncryption = errors.New("handshake: rsa encryption failed")
	// ErrDecryption is returned when the encrypted answer is malformed.
	ErrDecryption = errors.New("handshake: answer decryption failed")
	// ErrHashMismatch is returned when the answer digest does not cover
	// the decrypted payload.
	ErrHashMismatch = errors.New("handshake: answer hash mismatch")
	// ErrDHValidation is returned when the DH group or a public value is
	// unsafe.
	ErrDHValidation = errors.New("handshake: dh parameter validation failed")
	// ErrDHGenFailed is returned when the server refuses the negotiated
	// key; the only recovery is a fresh exchange.
	ErrDHGenFailed = errors.New("handshake: server rejected the key")
	// ErrUnexpectedConstructor is returned for any payload the exchange
	// does not know.
	ErrUnexpectedConstructor = errors.New("handshake: unexpected constructor")
)
