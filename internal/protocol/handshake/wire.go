package handshake

import (
	"fmt"

	"kexgram/internal/tl"
)

// Constructor ids of the exchange.
const (
	idReqPQMulti        = 0xbe7e8ef1
	idResPQ             = 0x05162463
	idPQInnerDataDC     = 0xa9f55f95
	idPQInnerDataTempDC = 0x56fddf88
	idReqDHParams       = 0xd712e4be
	idServerDHParamsOK  = 0xd0e8075c
	idServerDHInner     = 0xb5890dba
	idClientDHInner     = 0x6643b654
	idSetClientDHParams = 0xf5045f1f
	idDHGenOK           = 0x3bcbf734
	idDHGenRetry        = 0x46dc1fb9
	idDHGenFail         = 0xa69dae02
)

func encodeReqPQMulti(nonce [16]byte) []byte {
	e := tl.NewEncoder()
	e.PutID(idReqPQMulti)
	e.PutInt128(nonce)
	return e.Bytes()
}

type resPQ struct {
	Nonce        [16]byte
	ServerNonce  [16]byte
	PQ           []byte
	Fingerprints []int64
}

func decodeResPQ(payload []byte) (resPQ, error) {
	d := tl.NewDecoder(payload)
	if id := d.ID(); d.Err() == nil && id != idResPQ {
		return resPQ{}, fmt.Errorf("%w: %#x in pq response", ErrUnexpectedConstructor, id)
	}
	msg := resPQ{
		Nonce:        d.Int128(),
		ServerNonce:  d.Int128(),
		PQ:           d.Bytes(),
		Fingerprints: d.VectorLong(),
	}
	if err := d.Err(); err != nil {
		return resPQ{}, fmt.Errorf("decoding pq response: %w", err)
	}
	return msg, nil
}

func encodePQInnerData(mode Mode, pq, p, q []byte, nonce, serverNonce [16]byte, newNonce [32]byte, dcID, expiresIn int32) []byte {
	e := tl.NewEncoder()
	if mode == ModeTemp {
		e.PutID(idPQInnerDataTempDC)
	} else {
		e.PutID(idPQInnerDataDC)
	}
	e.PutBytes(pq)
	e.PutBytes(p)
	e.PutBytes(q)
	e.PutInt128(nonce)
	e.PutInt128(serverNonce)
	e.PutInt256(newNonce)
	e.PutInt(dcID)
	if mode == ModeTemp {
		e.PutInt(expiresIn)
	}
	return e.Bytes()
}

func encodeReqDHParams(nonce, serverNonce [16]byte, p, q []byte, fingerprint int64, encrypted []byte) []byte {
	e := tl.NewEncoder()
	e.PutID(idReqDHParams)
	e.PutInt128(nonce)
	e.PutInt128(serverNonce)
	e.PutBytes(p)
	e.PutBytes(q)
	e.PutLong(fingerprint)
	e.PutBytes(encrypted)
	return e.Bytes()
}

type serverDHParamsOK struct {
	Nonce           [16]byte
	ServerNonce     [16]byte
	EncryptedAnswer []byte
}

func decodeServerDHParamsOK(payload []byte) (serverDHParamsOK, error) {
	d := tl.NewDecoder(payload)
	if id := d.ID(); d.Err() == nil && id != idServerDHParamsOK {
		return serverDHParamsOK{}, fmt.Errorf("%w: %#x while awaiting dh params", ErrUnexpectedConstructor, id)
	}
	msg := serverDHParamsOK{
		Nonce:           d.Int128(),
		ServerNonce:     d.Int128(),
		EncryptedAnswer: d.Bytes(),
	}
	if err := d.Err(); err != nil {
		return serverDHParamsOK{}, fmt.Errorf("decoding dh params: %w", err)
	}
	return msg, nil
}

type serverDHInner struct {
	Nonce       [16]byte
	ServerNonce [16]byte
	G           int32
	DHPrime     []byte
	GA          []byte
	ServerTime  int32
}

// decodeServerDHInner parses the decrypted answer body and reports how many
// bytes the message occupied, so the caller can hash exactly that span.
func decodeServerDHInner(answer []byte) (serverDHInner, int, error) {
	d := tl.NewDecoder(answer)
	if id := d.ID(); d.Err() == nil && id != idServerDHInner {
		return serverDHInner{}, 0, fmt.Errorf("%w: %#x inside dh answer", ErrUnexpectedConstructor, id)
	}
	msg := serverDHInner{
		Nonce:       d.Int128(),
		ServerNonce: d.Int128(),
		G:           d.Int(),
		DHPrime:     d.Bytes(),
		GA:          d.Bytes(),
		ServerTime:  d.Int(),
	}
	if err := d.Err(); err != nil {
		return serverDHInner{}, 0, fmt.Errorf("decoding dh answer: %w", err)
	}
	return msg, d.Pos(), nil
}

func encodeClientDHInner(nonce, serverNonce [16]byte, retryID int64, gb []byte) []byte {
	e := tl.NewEncoder()
	e.PutID(idClientDHInner)
	e.PutInt128(nonce)
	e.PutInt128(serverNonce)
	e.PutLong(retryID)
	e.PutBytes(gb)
	return e.Bytes()
}

func encodeSetClientDHParams(nonce, serverNonce [16]byte, encrypted []byte) []byte {
	e := tl.NewEncoder()
	e.PutID(idSetClientDHParams)
	e.PutInt128(nonce)
	e.PutInt128(serverNonce)
	e.PutBytes(encrypted)
	return e.Bytes()
}

type dhGenAnswer struct {
	ID           uint32
	Nonce        [16]byte
	ServerNonce  [16]byte
	NewNonceHash [16]byte
}

func decodeDHGenAnswer(payload []byte) (dhGenAnswer, error) {
	d := tl.NewDecoder(payload)
	msg := dhGenAnswer{
		ID:           d.ID(),
		Nonce:        d.Int128(),
		ServerNonce:  d.Int128(),
		NewNonceHash: d.Int128(),
	}
	if err := d.Err(); err != nil {
		return dhGenAnswer{}, fmt.Errorf("decoding dh gen response: %w", err)
	}
	switch msg.ID {
	case idDHGenOK, idDHGenRetry, idDHGenFail:
		return msg, nil
	default:
		return dhGenAnswer{}, fmt.Errorf("%w: %#x while awaiting dh gen response", ErrUnexpectedConstructor, msg.ID)
	}
}
