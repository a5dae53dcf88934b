package transport_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"kexgram/internal/transport"
)

// plainFrame builds one server-side frame around a plain envelope.
func plainFrame(msgID int64, payload []byte) []byte {
	buf := make([]byte, 4+20+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(20+len(payload)))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(msgID))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(payload)))
	copy(buf[24:], payload)
	return buf
}

func TestConn_SendLayout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := transport.NewConn(client, time.Second, nil)
	defer c.Close()

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	frames := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4+20+len(payload))
		if _, err := io.ReadFull(server, buf); err != nil {
			t.Errorf("reading frame: %v", err)
		}
		frames <- buf
	}()

	before := time.Now().Unix()
	if err := c.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := <-frames

	if got := binary.LittleEndian.Uint32(frame[0:4]); got != uint32(20+len(payload)) {
		t.Fatalf("frame length %d, want %d", got, 20+len(payload))
	}
	if !bytes.Equal(frame[4:12], make([]byte, 8)) {
		t.Fatalf("auth key id bytes %x, want zero", frame[4:12])
	}
	msgID := int64(binary.LittleEndian.Uint64(frame[12:20]))
	if msgID&3 != 0 {
		t.Fatalf("message id %#x has nonzero low bits", msgID)
	}
	if secs := msgID >> 32; secs < before-2 || secs > before+2 {
		t.Fatalf("message id seconds %d, clock says %d", secs, before)
	}
	if got := binary.LittleEndian.Uint32(frame[20:24]); got != uint32(len(payload)) {
		t.Fatalf("payload length %d, want %d", got, len(payload))
	}
	if !bytes.Equal(frame[24:], payload) {
		t.Fatalf("payload %x, want %x", frame[24:], payload)
	}
}

func TestConn_MsgIDIncreases(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := transport.NewConn(client, time.Second, nil)
	defer c.Close()

	ids := make(chan int64, 2)
	go func() {
		for i := 0; i < 2; i++ {
			var head [4]byte
			if _, err := io.ReadFull(server, head[:]); err != nil {
				t.Errorf("reading frame length: %v", err)
				return
			}
			body := make([]byte, binary.LittleEndian.Uint32(head[:]))
			if _, err := io.ReadFull(server, body); err != nil {
				t.Errorf("reading frame body: %v", err)
				return
			}
			ids <- int64(binary.LittleEndian.Uint64(body[8:16]))
		}
	}()

	for i := 0; i < 2; i++ {
		if err := c.Send(context.Background(), []byte{0, 0, 0, 0}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	first, second := <-ids, <-ids
	if second <= first {
		t.Fatalf("message ids %#x then %#x, want strictly increasing", first, second)
	}
	if first&3 != 0 || second&3 != 0 {
		t.Fatalf("message ids %#x, %#x have nonzero low bits", first, second)
	}
}

func TestConn_RecvEnvelope(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := transport.NewConn(client, time.Second, nil)
	defer c.Close()

	payload := []byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4, 5, 6, 7, 8}
	go server.Write(plainFrame(time.Now().Unix()<<32, payload))

	got, err := c.Recv(context.Background())
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload %x, want %x", got, payload)
	}
}

func TestConn_RecvStatusFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := transport.NewConn(client, time.Second, nil)
	defer c.Close()

	frame := make([]byte, 8)
	binary.LittleEndian.PutUint32(frame[0:4], 4)
	status := int32(-404)
	binary.LittleEndian.PutUint32(frame[4:8], uint32(status))
	go server.Write(frame)

	_, err := c.Recv(context.Background())
	var pe *transport.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("Recv: %v, want *ProtocolError", err)
	}
	if pe.Code != -404 {
		t.Fatalf("status %d, want -404", pe.Code)
	}
}

func TestConn_RecvRejectsBadFrames(t *testing.T) {
	cases := []struct {
		name  string
		frame []byte
	}{
		{"oversized length", binary.LittleEndian.AppendUint32(nil, 1<<21)},
		{"short envelope", append(binary.LittleEndian.AppendUint32(nil, 8), make([]byte, 8)...)},
		{"nonzero auth key id", func() []byte {
			f := plainFrame(0, []byte{1, 2, 3, 4})
			f[4] = 1
			return f
		}()},
		{"payload length overrun", func() []byte {
			f := plainFrame(0, []byte{1, 2, 3, 4})
			binary.LittleEndian.PutUint32(f[20:24], 100)
			return f
		}()},
	}
	for _, tc := range cases {
		client, server := net.Pipe()
		c := transport.NewConn(client, time.Second, nil)
		go server.Write(tc.frame)
		if _, err := c.Recv(context.Background()); err == nil {
			t.Errorf("%s: Recv accepted the frame", tc.name)
		}
		c.Close()
		server.Close()
	}
}

func TestConn_RecvHonorsContextDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := transport.NewConn(client, time.Minute, nil)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Recv(ctx); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("Recv: %v, want deadline exceeded", err)
	}
}

func TestDialer_AnnouncesFraming(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	type accepted struct {
		head [4]byte
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			ch <- accepted{err: err}
			return
		}
		defer conn.Close()
		var a accepted
		_, a.err = io.ReadFull(conn, a.head[:])
		ch <- a
	}()

	d := transport.Dialer{Timeout: 2 * time.Second}
	fc, err := d.Dial(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer fc.Close()

	a := <-ch
	if a.err != nil {
		t.Fatalf("accept side: %v", a.err)
	}
	if a.head != [4]byte{0xee, 0xee, 0xee, 0xee} {
		t.Fatalf("announcement %x, want eeeeeeee", a.head)
	}
}
