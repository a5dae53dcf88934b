package domain

import "context"

// KeyStore persists negotiated auth keys and salts per data center.
type KeyStore interface {
	SaveKey(passphrase string, dc int, key AuthKey, salt ServerSalt) error
	LoadKey(passphrase string, dc int) (AuthKey, ServerSalt, bool, error)
	Keys(passphrase string) (map[int]AuthKey, error)
}

// FrameConn carries length-delimited payloads to and from one server.
type FrameConn interface {
	Send(ctx context.Context, payload []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens FrameConns to server addresses.
type Dialer interface {
	Dial(ctx context.Context, addr string) (FrameConn, error)
}
