package crypto

// Keyring holds the trusted RSA public keys, indexed by TL fingerprint.
type Keyring struct {
	keys         []PublicKey
	fingerprints []int64
}

// NewKeyring returns a Keyring holding the given keys.
func NewKeyring(keys ...PublicKey) *Keyring {
	r := &Keyring{}
	for _, k := range keys {
		r.Add(k)
	}
	return r
}

// Add appends a key, precomputing its fingerprint.
func (r *Keyring) Add(k PublicKey) {
	r.keys = append(r.keys, k)
	r.fingerprints = append(r.fingerprints, k.Fingerprint())
}

// Find returns the key for the first of the given fingerprints present in
// the ring, preserving the caller's preference order.
func (r *Keyring) Find(fingerprints []int64) (PublicKey, bool) {
	for _, want := range fingerprints {
		for i, have := range r.fingerprints {
			if have == want {
				return r.keys[i], true
			}
		}
	}
	return PublicKey{}, false
}

// Fingerprints lists the fingerprints of all held keys.
func (r *Keyring) Fingerprints() []int64 {
	return append([]int64(nil), r.fingerprints...)
}

// Len reports how many keys the ring holds.
func (r *Keyring) Len() int { return len(r.keys) }
