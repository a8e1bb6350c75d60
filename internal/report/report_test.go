/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

func sampleRecord() *model.CertificateRecord {
	rec := &model.CertificateRecord{
		CertificateID:     "AEE-1787000000-abababab",
		Signatures:        model.DualSignature{SignatureClassic: make([]byte, 64), Timestamp: "2026-08-29T12:00:00Z"},
		ProtocolVersion:   "2.2.0-HybridPQC",
		CertificationDate: "2026-08-29T12:00:01Z",
		State:             model.StateActive,
	}
	rec.HashSHA256 = strings.Repeat("ab", 32)
	rec.File = model.FileDescriptor{Name: "doc.txt", SizeBytes: 42}
	rec.Metadata = map[string]any{"author": "alice"}
	rec.TimestampNTP = model.TimeConsensusRecord{
		TimestampISO:         "2026-08-29T12:00:00Z",
		TimestampUnix:        1787000000,
		ServersConsulted:     5,
		ServersSuccessful:    4,
		ServersUsedConsensus: 3,
		DeviationMs:          12.5,
	}
	return rec
}

func TestRenderCertificate(t *testing.T) {
	out := RenderCertificate(sampleRecord())
	assert.Contains(t, out, "AEE-1787000000-abababab")
	assert.Contains(t, out, "doc.txt")
	assert.Contains(t, out, "quorum 3/5 sources")
	assert.Contains(t, out, "no post-quantum seal")

	rec := sampleRecord()
	rec.Signatures.PQSeal = []byte{1}
	rec.Signatures.PQAuthTag = []byte{2}
	out = RenderCertificate(rec)
	assert.Contains(t, out, "ML-KEM-768")
}

func TestRenderVerification(t *testing.T) {
	r := &model.VerificationReport{
		Hash:             model.StageResult{Passed: true, Detail: "file hash matches certificate"},
		Timestamp:        model.StageResult{Passed: true, Detail: "consensus timestamp plausible"},
		SignatureClassic: model.StageResult{Detail: "classical signature invalid"},
	}
	out := RenderVerification("AEE-1787000000-abababab", r)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "[ok] hash")
	assert.Contains(t, out, "[!!] signature")
}

func TestRenderCertificateJSON(t *testing.T) {
	out, err := RenderCertificateJSON(sampleRecord())
	if err != nil {
		t.Fatalf("RenderCertificateJSON error: %v", err)
	}
	assert.Contains(t, out, "\"certificate_id\"")
	assert.Contains(t, out, "\"hash_sha256\"")

	// keys are emitted in sorted order, not struct field order
	certID := strings.Index(out, "\"certificate_id\"")
	hash := strings.Index(out, "\"hash_sha256\"")
	state := strings.Index(out, "\"state\"")
	assert.Less(t, certID, hash)
	assert.Less(t, hash, state)
}
