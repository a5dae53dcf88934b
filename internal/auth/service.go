package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"kexgram/internal/crypto"
	"kexgram/internal/dc"
	"kexgram/internal/domain"
	"kexgram/internal/protocol/handshake"
)

// Service negotiates and stores auth keys.
//
// A negotiation opens one framed connection, runs the three-round-trip key
// exchange against it, and leaves the data center with a shared 2048-bit
// key. This service handles:
//   - Dialing the chosen data center.
//   - Pumping engine payloads and server responses until completion.
//   - Persisting permanent keys under the data center id.
type Service struct {
	dialer domain.Dialer
	keys   *crypto.Keyring
	store  domain.KeyStore
	log    *logrus.Logger
}

// New constructs an auth Service from a dialer, the trusted server RSA keys
// and a key store.
func New(dialer domain.Dialer, keys *crypto.Keyring, store domain.KeyStore, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		dialer: dialer,
		keys:   keys,
		store:  store,
		log:    log,
	}
}

// Negotiate runs one key exchange against target and returns the agreed key
// and first server salt.
//
// Steps:
//  1. Dial the data center and announce framing.
//  2. Start the exchange and transmit each payload the engine produces,
//     feeding every response back until the engine reports completion.
//  3. Persist the key under the data center id. Temporary keys are bound
//     to a connection and are returned without being stored.
func (s *Service) Negotiate(ctx context.Context, passphrase string, target dc.Option, mode handshake.Mode, expiry time.Duration) (domain.AuthKey, domain.ServerSalt, error) {
	conn, err := s.dialer.Dial(ctx, target.Addr())
	if err != nil {
		return domain.AuthKey{}, domain.ServerSalt{}, fmt.Errorf("auth: dialing dc %d: %w", target.ID, err)
	}
	defer conn.Close()

	hs, err := handshake.New(handshake.Config{
		DC:     dc.WireID(target),
		Mode:   mode,
		Expiry: expiry,
		Keys:   s.keys,
	})
	if err != nil {
		return domain.AuthKey{}, domain.ServerSalt{}, err
	}

	s.log.WithFields(logrus.Fields{"dc": target.ID, "addr": target.Addr(), "mode": mode.String()}).Info("auth: negotiating key")

	payload, err := hs.Start()
	if err != nil {
		return domain.AuthKey{}, domain.ServerSalt{}, err
	}
	for {
		if err := conn.Send(ctx, payload); err != nil {
			return domain.AuthKey{}, domain.ServerSalt{}, fmt.Errorf("auth: dc %d: %w", target.ID, err)
		}
		resp, err := conn.Recv(ctx)
		if err != nil {
			return domain.AuthKey{}, domain.ServerSalt{}, fmt.Errorf("auth: dc %d: %w", target.ID, err)
		}
		act, err := hs.Handle(resp)
		if err != nil {
			return domain.AuthKey{}, domain.ServerSalt{}, fmt.Errorf("auth: dc %d: %w", target.ID, err)
		}
		if act.Result == nil {
			payload = act.Send
			continue
		}

		res := act.Result
		if offset := time.Since(time.Unix(int64(res.ServerTime), 0)); offset < -2*time.Second || offset > 2*time.Second {
			s.log.WithFields(logrus.Fields{"dc": target.ID, "offset": offset.String()}).Warn("auth: server clock differs")
		}
		if mode == handshake.ModeMain {
			if err := s.store.SaveKey(passphrase, target.ID, res.Key, res.Salt); err != nil {
				return domain.AuthKey{}, domain.ServerSalt{}, fmt.Errorf("auth: storing key for dc %d: %w", target.ID, err)
			}
		}
		s.log.WithFields(logrus.Fields{"dc": target.ID, "key_id": fmt.Sprintf("%#x", res.Key.ID)}).Info("auth: key negotiated")
		return res.Key, res.Salt, nil
	}
}

// Key returns the stored key and salt of one data center, when present.
func (s *Service) Key(passphrase string, dcID int) (domain.AuthKey, domain.ServerSalt, bool, error) {
	return s.store.LoadKey(passphrase, dcID)
}

// Keys returns every stored key, keyed by data center.
func (s *Service) Keys(passphrase string) (map[int]domain.AuthKey, error) {
	return s.store.Keys(passphrase)
}
