package domain

import "time"

// ServerSalt is the 64-bit salt the server ties to a negotiated key,
// together with the moment it became valid.
type ServerSalt struct {
	Value      int64     `json:"value"`
	ValidSince time.Time `json:"valid_since"`
}
