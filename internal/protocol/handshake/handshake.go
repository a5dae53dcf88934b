package handshake

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"kexgram/internal/crypto"
	"kexgram/internal/domain"
	"kexgram/internal/tl"
	"kexgram/internal/util/memzero"
)

// State tracks the strictly ordered progress of one exchange attempt.
type State int

const (
	StateStart State = iota
	StateResPQ
	StateServerDHParams
	StateDHGenResponse
	StateFinish
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateResPQ:
		return "awaiting pq response"
	case StateServerDHParams:
		return "awaiting dh params"
	case StateDHGenResponse:
		return "awaiting dh gen response"
	case StateFinish:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode selects between a permanent key and a temporary one.
type Mode int

const (
	ModeMain Mode = iota
	ModeTemp
)

func (m Mode) String() string {
	if m == ModeTemp {
		return "temp"
	}
	return "main"
}

// DefaultTempExpiry is the lifetime requested for temporary keys when the
// config leaves it unset.
const DefaultTempExpiry = 24 * time.Hour

// Config carries the per-exchange inputs.
type Config struct {
	// DC is the data-center value sent in the encrypted inner payload.
	// Test-flavor DCs are offset by 10000; see the dc package.
	DC int32
	// Mode selects a permanent or temporary key.
	Mode Mode
	// Expiry is the requested lifetime of a temporary key; zero means
	// DefaultTempExpiry. Ignored in main mode.
	Expiry time.Duration
	// Keys is the set of trusted server RSA keys.
	Keys *crypto.Keyring
	// Rand is the randomness source; nil means crypto/rand.
	Rand io.Reader
}

// Action is what the caller must do after feeding a message: transmit Send,
// or stop with the terminal Result.
type Action struct {
	Send   []byte
	Result *Result
}

// Result is the outcome of a finished exchange.
type Result struct {
	Key        domain.AuthKey
	Salt       domain.ServerSalt
	ServerTime int32
}

// Handshake is one in-flight exchange attempt. It performs no I/O and must
// be driven from a single goroutine. Errors never advance the state; after
// a failure the caller abandons the attempt and starts a fresh exchange.
type Handshake struct {
	cfg   Config
	state State

	nonce       [16]byte
	serverNonce [16]byte
	newNonce    [32]byte

	authKey    [256]byte
	serverTime int32
	result     *Result
}

// New validates cfg and returns an exchange ready to start.
func New(cfg Config) (*Handshake, error) {
	if cfg.Keys == nil || cfg.Keys.Len() == 0 {
		return nil, fmt.Errorf("handshake: config needs at least one trusted rsa key")
	}
	if cfg.Mode == ModeTemp {
		if cfg.Expiry == 0 {
			cfg.Expiry = DefaultTempExpiry
		}
		if secs := int64(cfg.Expiry / time.Second); secs <= 0 || secs > math.MaxInt32 {
			return nil, fmt.Errorf("handshake: temp key expiry %v out of range", cfg.Expiry)
		}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	return &Handshake{cfg: cfg, state: StateStart}, nil
}

// State returns the current position in the exchange.
func (h *Handshake) State() State { return h.state }

// DC returns the data-center value this exchange was configured with.
func (h *Handshake) DC() int32 { return h.cfg.DC }

// Mode returns the configured key mode.
func (h *Handshake) Mode() Mode { return h.cfg.Mode }

// AuthKey returns the negotiated key. The second return is false until the
// exchange has finished.
func (h *Handshake) AuthKey() (domain.AuthKey, bool) {
	if h.result == nil {
		return domain.AuthKey{}, false
	}
	return h.result.Key, true
}

// ServerSalt returns the initial salt. The second return is false until the
// exchange has finished.
func (h *Handshake) ServerSalt() (domain.ServerSalt, bool) {
	if h.result == nil {
		return domain.ServerSalt{}, false
	}
	return h.result.Salt, true
}

// Start draws the client nonce and returns the first request payload.
func (h *Handshake) Start() ([]byte, error) {
	if h.state != StateStart {
		return nil, fmt.Errorf("%w: Start in %q", ErrInvalidState, h.state)
	}
	if _, err := io.ReadFull(h.cfg.Rand, h.nonce[:]); err != nil {
		return nil, err
	}
	h.state = StateResPQ
	return encodeReqPQMulti(h.nonce), nil
}

// Handle feeds one server payload to the exchange. The constructor decides
// which step runs; the step refuses to run outside its state.
func (h *Handshake) Handle(payload []byte) (Action, error) {
	d := tl.NewDecoder(payload)
	id := d.ID()
	if err := d.Err(); err != nil {
		return Action{}, fmt.Errorf("reading constructor: %w", err)
	}
	switch id {
	case idResPQ:
		return h.handleResPQ(payload)
	case idServerDHParamsOK:
		return h.handleServerDHParams(payload)
	case idDHGenOK, idDHGenRetry, idDHGenFail:
		return h.handleDHGen(payload)
	default:
		return Action{}, fmt.Errorf("%w: %#x", ErrUnexpectedConstructor, id)
	}
}

// handleResPQ factors the challenge and answers with the RSA-encrypted
// inner data carrying the secret new nonce.
func (h *Handshake) handleResPQ(payload []byte) (Action, error) {
	if h.state != StateResPQ {
		return Action{}, fmt.Errorf("%w: pq response in %q", ErrInvalidState, h.state)
	}
	msg, err := decodeResPQ(payload)
	if err != nil {
		return Action{}, err
	}
	if msg.Nonce != h.nonce {
		return Action{}, ErrNonceMismatch
	}
	h.serverNonce = msg.ServerNonce

	p, q, err := crypto.SplitPQ(msg.PQ)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrFactorization, err)
	}

	key, ok := h.cfg.Keys.Find(msg.Fingerprints)
	if !ok {
		return Action{}, fmt.Errorf("%w: server offered %v", ErrRSAKeyNotFound, msg.Fingerprints)
	}

	if _, err := io.ReadFull(h.cfg.Rand, h.newNonce[:]); err != nil {
		return Action{}, err
	}

	inner := encodePQInnerData(h.cfg.Mode, msg.PQ, p, q, h.nonce, h.serverNonce, h.newNonce, h.cfg.DC, h.expirySeconds())
	encrypted, err := key.EncryptPad(inner, h.cfg.Rand)
	memzero.Zero(inner)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrRSAEncryption, err)
	}

	h.state = StateServerDHParams
	return Action{Send: encodeReqDHParams(h.nonce, h.serverNonce, p, q, key.Fingerprint(), encrypted)}, nil
}

func (h *Handshake) expirySeconds() int32 {
	if h.cfg.Mode != ModeTemp {
		return 0
	}
	return int32(h.cfg.Expiry / time.Second)
}

// handleServerDHParams decrypts the DH group, validates it, derives the
// shared key and answers with the encrypted client half.
func (h *Handshake) handleServerDHParams(payload []byte) (Action, error) {
	if h.state != StateServerDHParams {
		return Action{}, fmt.Errorf("%w: dh params in %q", ErrInvalidState, h.state)
	}
	msg, err := decodeServerDHParamsOK(payload)
	if err != nil {
		return Action{}, err
	}
	if msg.Nonce != h.nonce {
		return Action{}, ErrNonceMismatch
	}
	if msg.ServerNonce != h.serverNonce {
		return Action{}, ErrServerNonceMismatch
	}

	key, iv := crypto.DeriveTempKeys(h.serverNonce, h.newNonce)
	defer memzero.Zero(key[:])
	defer memzero.Zero(iv[:])

	if len(msg.EncryptedAnswer)%16 != 0 {
		return Action{}, fmt.Errorf("%w: encrypted answer length %d", ErrDecryption, len(msg.EncryptedAnswer))
	}
	answer, err := crypto.DecryptIGE(key[:], iv[:], msg.EncryptedAnswer)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	defer memzero.Zero(answer)
	if len(answer) < sha1.Size {
		return Action{}, fmt.Errorf("%w: answer shorter than its digest", ErrDecryption)
	}

	inner, consumed, err := decodeServerDHInner(answer[sha1.Size:])
	if err != nil {
		return Action{}, err
	}
	digest := sha1.Sum(answer[sha1.Size : sha1.Size+consumed])
	if subtle.ConstantTimeCompare(digest[:], answer[:sha1.Size]) != 1 {
		return Action{}, ErrHashMismatch
	}
	if inner.Nonce != h.nonce {
		return Action{}, ErrNonceMismatch
	}
	if inner.ServerNonce != h.serverNonce {
		return Action{}, ErrServerNonceMismatch
	}

	if err := CheckDHParams(inner.G, inner.DHPrime, inner.GA); err != nil {
		return Action{}, err
	}

	gb, authKey, err := computeDHKeys(inner.G, inner.DHPrime, inner.GA, h.cfg.Rand)
	if err != nil {
		return Action{}, err
	}
	h.authKey = authKey
	h.serverTime = inner.ServerTime

	clientInner := encodeClientDHInner(h.nonce, h.serverNonce, 0, gb)
	sealed, err := h.sealClientAnswer(clientInner, key, iv)
	memzero.Zero(clientInner)
	if err != nil {
		return Action{}, err
	}

	h.state = StateDHGenResponse
	return Action{Send: encodeSetClientDHParams(h.nonce, h.serverNonce, sealed)}, nil
}

// sealClientAnswer prefixes the inner payload with its SHA1, pads to the
// block size with random bytes and encrypts under the temp keys.
func (h *Handshake) sealClientAnswer(inner []byte, key, iv [32]byte) ([]byte, error) {
	digest := sha1.Sum(inner)
	buf := make([]byte, 0, sha1.Size+len(inner)+15)
	buf = append(buf, digest[:]...)
	buf = append(buf, inner...)
	if over := len(buf) % 16; over != 0 {
		tail := make([]byte, 16-over)
		if _, err := io.ReadFull(h.cfg.Rand, tail); err != nil {
			return nil, err
		}
		buf = append(buf, tail...)
	}
	defer memzero.Zero(buf)
	return crypto.EncryptIGE(key[:], iv[:], buf)
}

// handleDHGen checks the server's acknowledgement and finishes with the key
// and salt, or fails permanently on a retry/failure verdict.
func (h *Handshake) handleDHGen(payload []byte) (Action, error) {
	if h.state != StateDHGenResponse {
		return Action{}, fmt.Errorf("%w: dh gen response in %q", ErrInvalidState, h.state)
	}
	msg, err := decodeDHGenAnswer(payload)
	if err != nil {
		return Action{}, err
	}
	if msg.Nonce != h.nonce {
		return Action{}, ErrNonceMismatch
	}
	if msg.ServerNonce != h.serverNonce {
		return Action{}, ErrServerNonceMismatch
	}

	switch msg.ID {
	case idDHGenRetry:
		return Action{}, fmt.Errorf("%w: server asked for a retry", ErrDHGenFailed)
	case idDHGenFail:
		return Action{}, fmt.Errorf("%w: server reported failure", ErrDHGenFailed)
	}

	expected := NewNonceHash(h.newNonce, h.authKey)
	if subtle.ConstantTimeCompare(expected[:], msg.NewNonceHash[:]) != 1 {
		return Action{}, ErrNewNonceHashMismatch
	}

	salt := int64(binary.LittleEndian.Uint64(h.newNonce[:8]) ^ binary.LittleEndian.Uint64(h.serverNonce[:8]))

	key := domain.NewAuthKey(h.authKey)
	if h.cfg.Mode == ModeTemp {
		key = domain.NewTempAuthKey(h.authKey, h.cfg.Expiry)
	}
	memzero.Zero(h.authKey[:])

	h.state = StateFinish
	h.result = &Result{
		Key:        key,
		Salt:       domain.ServerSalt{Value: salt, ValidSince: time.Now()},
		ServerTime: h.serverTime,
	}
	return Action{Result: h.result}, nil
}

// NewNonceHash computes the acknowledgement digest the server must echo:
// sixteen bytes out of SHA1(new_nonce ‖ 0x01 ‖ SHA1(auth_key)[0:8]).
func NewNonceHash(newNonce [32]byte, authKey [256]byte) [16]byte {
	keyDigest := sha1.Sum(authKey[:])
	buf := make([]byte, 0, len(newNonce)+1+8)
	buf = append(buf, newNonce[:]...)
	buf = append(buf, 0x01)
	buf = append(buf, keyDigest[:8]...)
	sum := sha1.Sum(buf)
	var out [16]byte
	copy(out[:], sum[4:])
	return out
}
