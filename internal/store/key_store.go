package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"kexgram/internal/domain"
)

const keysFilename = "authkeys.json.enc"

// record pairs a key with the salt it was negotiated alongside.
type record struct {
	Key  domain.AuthKey    `json:"key"`
	Salt domain.ServerSalt `json:"salt"`
}

// KeyFileStore persists per-DC auth keys in one encrypted file.
type KeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{dir: dir}
}

// SaveKey writes or replaces the key of one data center.
func (s *KeyFileStore) SaveKey(passphrase string, dc int, key domain.AuthKey, salt domain.ServerSalt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(passphrase)
	if err != nil {
		return err
	}
	records[dc] = record{Key: key, Salt: salt}

	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	ct, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, keysFilename), ct, 0o600)
}

// LoadKey reads the key of one data center. The third return is false when
// no key has been stored for it.
func (s *KeyFileStore) LoadKey(passphrase string, dc int) (domain.AuthKey, domain.ServerSalt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(passphrase)
	if err != nil {
		return domain.AuthKey{}, domain.ServerSalt{}, false, err
	}
	rec, ok := records[dc]
	if !ok {
		return domain.AuthKey{}, domain.ServerSalt{}, false, nil
	}
	return rec.Key, rec.Salt, true, nil
}

// Keys reads every stored key, keyed by data center.
func (s *KeyFileStore) Keys(passphrase string) (map[int]domain.AuthKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(passphrase)
	if err != nil {
		return nil, err
	}
	out := make(map[int]domain.AuthKey, len(records))
	for dc, rec := range records {
		out[dc] = rec.Key
	}
	return out, nil
}

// load decrypts the key file; a missing file is an empty store.
func (s *KeyFileStore) load(passphrase string) (map[int]record, error) {
	b, err := readFile(filepath.Join(s.dir, keysFilename))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return map[int]record{}, nil
	}
	pt, err := decrypt(passphrase, b)
	if err != nil {
		return nil, err
	}
	var records map[int]record
	if err := json.Unmarshal(pt, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
