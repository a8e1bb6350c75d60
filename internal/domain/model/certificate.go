/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import (
	"fmt"

	"github.com/aeeprotocol/aee-notary/internal/domain"
)

// FileHashLen is the length of a SHA-256 hash in lowercase hex.
const FileHashLen = 64

// FileDescriptor identifies the certified file.
type FileDescriptor struct {
	Name      string `json:"name" cbor:"name"`
	SizeBytes int64  `json:"size_bytes" cbor:"size_bytes"`
}

// PublicKeys holds the public halves embedded in a certificate. The
// post-quantum key is optional; the key identifier is derived from the
// concatenation of both public halves.
type PublicKeys struct {
	ClassicalPublic string `json:"classical_public" cbor:"classical_public"`
	PQPublic        string `json:"pq_public,omitempty" cbor:"pq_public,omitempty"`
	KeyID           string `json:"key_id" cbor:"key_id"`
}

// CertificatePayload is the signable subset of a certificate. Every field
// participates in the canonical encoding; mutating any of them after signing
// invalidates the signature by construction.
type CertificatePayload struct {
	HashSHA256   string              `json:"hash_sha256" cbor:"hash_sha256"`
	TimestampNTP TimeConsensusRecord `json:"timestamp_ntp" cbor:"timestamp_ntp"`
	File         FileDescriptor      `json:"file" cbor:"file"`
	Metadata     map[string]any      `json:"metadata" cbor:"metadata"`
	PublicKeys   PublicKeys          `json:"public_keys" cbor:"public_keys"`
}

// CertificateRecord is an issued certificate. The lifecycle state is owned by
// the persistence layer; the certification core writes it once ("active") and
// never interprets it afterwards.
type CertificateRecord struct {
	CertificateID string `json:"certificate_id"`
	CertificatePayload
	Signatures        DualSignature `json:"signatures"`
	ProtocolVersion   string        `json:"protocol_version"`
	CertificationDate string        `json:"certification_date"`
	State             State         `json:"state"`
}

// Payload returns the signable subset for canonical re-encoding.
func (c *CertificateRecord) Payload() *CertificatePayload {
	return &c.CertificatePayload
}

// ValidateFileHash checks the 64-character lowercase hex shape of a SHA-256
// file hash.
func ValidateFileHash(h string) error {
	if len(h) != FileHashLen {
		return fmt.Errorf("%w: file hash must be %d hex characters, got %d", domain.ErrValidation, FileHashLen, len(h))
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: file hash must be lowercase hex", domain.ErrValidation)
		}
	}
	return nil
}
