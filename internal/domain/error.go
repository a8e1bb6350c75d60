package domain

import "errors"

// Failure classes of the certification core. Callers branch with errors.Is;
// the concrete cause is carried in the wrapped message.
var (
	ErrValidation = errors.New("malformed input")
	ErrQuorum     = errors.New("time quorum not reached")
	ErrSigning    = errors.New("classical signature generation failed")
	ErrCrypto     = errors.New("cryptographic operation failed")
	ErrEncoding   = errors.New("value has no canonical encoding")
)

// Lifecycle sentinels owned by the persistence layer.
var (
	ErrNotFound = errors.New("item not found")
	ErrExpired  = errors.New("item expired")
	ErrRevoked  = errors.New("item revoked")
)
