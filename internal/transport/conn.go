package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"kexgram/internal/domain"
)

// initIntermediate announces the framing mode right after connect.
var initIntermediate = [4]byte{0xee, 0xee, 0xee, 0xee}

const (
	// envelopeHeaderLen covers auth key id, message id and payload length.
	envelopeHeaderLen = 8 + 8 + 4
	// maxFrameLen rejects frames far beyond anything the exchange sends.
	maxFrameLen = 1 << 20
	// DefaultTimeout bounds connecting and, when the context carries no
	// deadline, each send and receive.
	DefaultTimeout = 10 * time.Second
)

// ProtocolError is a bare status frame from the server, for example -404
// when it does not recognise the request.
type ProtocolError struct {
	Code int32
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: server replied with status %d", e.Code)
}

// Dialer opens framed connections to data centers.
type Dialer struct {
	// Timeout replaces DefaultTimeout when set.
	Timeout time.Duration
	// Log receives frame-level debug entries; nil silences them.
	Log *logrus.Logger
}

var _ domain.Dialer = Dialer{}

// Dial connects to addr over TCP and announces intermediate framing.
func (d Dialer) Dial(ctx context.Context, addr string) (domain.FrameConn, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	nd := net.Dialer{Timeout: timeout}
	tcp, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", addr, err)
	}
	if _, err := tcp.Write(initIntermediate[:]); err != nil {
		tcp.Close()
		return nil, fmt.Errorf("transport: announcing framing to %s: %w", addr, err)
	}
	if d.Log != nil {
		d.Log.WithField("addr", addr).Debug("transport: connected")
	}
	return NewConn(tcp, timeout, d.Log), nil
}

// Conn frames plain payloads over an established connection.
type Conn struct {
	nc      net.Conn
	timeout time.Duration
	log     *logrus.Logger

	mu        sync.Mutex
	lastMsgID int64
}

var _ domain.FrameConn = (*Conn)(nil)

// NewConn wraps an already-open connection, for callers that bring their
// own tunnel. The framing announcement must have been sent.
func NewConn(nc net.Conn, timeout time.Duration, log *logrus.Logger) *Conn {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Conn{nc: nc, timeout: timeout, log: log}
}

// nextMsgID derives a message id from the wall clock: seconds since the
// epoch in the high 32 bits, a nanosecond fraction below, the two low bits
// zero as required of client messages. Ids keep increasing even when the
// clock stalls.
func (c *Conn) nextMsgID(now time.Time) int64 {
	id := now.Unix()<<32 | int64(now.Nanosecond())&^3
	c.mu.Lock()
	if id <= c.lastMsgID {
		id = c.lastMsgID + 4
	}
	c.lastMsgID = id
	c.mu.Unlock()
	return id
}

// Send wraps payload in the plain envelope and one length frame.
func (c *Conn) Send(ctx context.Context, payload []byte) error {
	if err := c.nc.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return err
	}
	buf := make([]byte, 4+envelopeHeaderLen+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(envelopeHeaderLen+len(payload)))
	// buf[4:12] stays zero: no auth key exists yet.
	binary.LittleEndian.PutUint64(buf[12:20], uint64(c.nextMsgID(time.Now())))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(payload)))
	copy(buf[24:], payload)
	if _, err := c.nc.Write(buf); err != nil {
		return fmt.Errorf("transport: sending frame: %w", err)
	}
	if c.log != nil {
		c.log.WithField("bytes", len(payload)).Debug("transport: frame sent")
	}
	return nil
}

// Recv reads one frame and unwraps the envelope.
func (c *Conn) Recv(ctx context.Context) ([]byte, error) {
	if err := c.nc.SetReadDeadline(c.deadline(ctx)); err != nil {
		return nil, err
	}
	var head [4]byte
	if _, err := io.ReadFull(c.nc, head[:]); err != nil {
		return nil, fmt.Errorf("transport: reading frame length: %w", err)
	}
	frameLen := binary.LittleEndian.Uint32(head[:])
	if frameLen > maxFrameLen {
		return nil, fmt.Errorf("transport: %d-byte frame is over the limit", frameLen)
	}
	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(c.nc, frame); err != nil {
		return nil, fmt.Errorf("transport: reading frame body: %w", err)
	}
	if len(frame) == 4 {
		return nil, &ProtocolError{Code: int32(binary.LittleEndian.Uint32(frame))}
	}
	if len(frame) < envelopeHeaderLen {
		return nil, fmt.Errorf("transport: %d-byte frame is shorter than the envelope", len(frame))
	}
	if authKeyID := binary.LittleEndian.Uint64(frame[0:8]); authKeyID != 0 {
		return nil, fmt.Errorf("transport: unexpected auth key id %#x in a plain frame", authKeyID)
	}
	payloadLen := binary.LittleEndian.Uint32(frame[16:20])
	if int64(payloadLen) > int64(len(frame)-envelopeHeaderLen) {
		return nil, fmt.Errorf("transport: envelope claims %d payload bytes, frame carries %d", payloadLen, len(frame)-envelopeHeaderLen)
	}
	if c.log != nil {
		c.log.WithField("bytes", payloadLen).Debug("transport: frame received")
	}
	return frame[envelopeHeaderLen : envelopeHeaderLen+int(payloadLen)], nil
}

// Close shuts the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }

func (c *Conn) deadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(c.timeout)
}
