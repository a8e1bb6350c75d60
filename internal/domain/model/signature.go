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

// DualSignature carries the mandatory classical signature plus the optional
// post-quantum seal. The seal and its authentication tag appear together or
// not at all.
type DualSignature struct {
	SignatureClassic HexBytes `json:"signature_classic" cbor:"signature_classic"`
	PQSeal           HexBytes `json:"pq_seal,omitempty" cbor:"pq_seal,omitempty"`
	PQAuthTag        HexBytes `json:"pq_auth_tag,omitempty" cbor:"pq_auth_tag,omitempty"`
	Timestamp        string   `json:"timestamp" cbor:"timestamp"`
}

// SealPresent reports whether the post-quantum layer was produced.
func (s *DualSignature) SealPresent() bool {
	return len(s.PQSeal) > 0 && len(s.PQAuthTag) > 0
}

// Validate checks structural well-formedness: a classical signature is always
// required, and the post-quantum fields come in pairs.
func (s *DualSignature) Validate() error {
	if len(s.SignatureClassic) == 0 {
		return fmt.Errorf("%w: classical signature is required", domain.ErrValidation)
	}
	if (len(s.PQSeal) > 0) != (len(s.PQAuthTag) > 0) {
		return fmt.Errorf("%w: post-quantum seal and tag must appear together", domain.ErrValidation)
	}
	return nil
}

// SignatureCheck is the detailed outcome of signature verification. The
// post-quantum seal is informational only and never affects the classical
// result.
type SignatureCheck struct {
	ClassicalValid  bool   `json:"classical_valid"`
	ClassicalDetail string `json:"classical_detail"`
	SealPresent     bool   `json:"seal_present"`
	SealDetail      string `json:"seal_detail"`
}

// StageResult is a single stage of certificate verification.
type StageResult struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// VerificationReport is the full outcome of the three verification stages.
// Every stage is evaluated and reported; Overall is true only when all of
// them pass.
type VerificationReport struct {
	Hash             StageResult `json:"hash"`
	Timestamp        StageResult `json:"timestamp"`
	SignatureClassic StageResult `json:"signature_classic"`
	PQSealPresent    bool        `json:"pq_seal_present"`
	PQSealDetail     string      `json:"pq_seal_detail,omitempty"`
	Overall          bool        `json:"overall"`
}
