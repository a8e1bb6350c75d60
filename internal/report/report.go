/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package report renders certificates and verification outcomes for human
// consumption.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// RenderCertificate produces an executive text summary of an issued
// certificate.
func RenderCertificate(rec *model.CertificateRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "CERTIFICATE %s\n", rec.CertificateID)
	fmt.Fprintf(&b, "  Protocol:    %s\n", rec.ProtocolVersion)
	fmt.Fprintf(&b, "  Issued:      %s\n", rec.CertificationDate)
	fmt.Fprintf(&b, "  State:       %s\n", rec.State)
	fmt.Fprintf(&b, "  File:        %s (%d bytes)\n", rec.File.Name, rec.File.SizeBytes)
	fmt.Fprintf(&b, "  SHA-256:     %s\n", rec.HashSHA256)
	fmt.Fprintf(&b, "  Timestamp:   %s (quorum %d/%d sources, deviation %.2fms)\n",
		rec.TimestampNTP.TimestampISO,
		rec.TimestampNTP.ServersUsedConsensus,
		rec.TimestampNTP.ServersConsulted,
		rec.TimestampNTP.DeviationMs)
	fmt.Fprintf(&b, "  Key ID:      %s\n", rec.PublicKeys.KeyID)

	if rec.Signatures.SealPresent() {
		b.WriteString("  Signatures:  classical Ed25519 + post-quantum seal (ML-KEM-768)\n")
	} else {
		b.WriteString("  Signatures:  classical Ed25519 (no post-quantum seal)\n")
	}
	return b.String()
}

// RenderVerification produces a summary of the three verification stages.
func RenderVerification(certID string, r *model.VerificationReport) string {
	var b strings.Builder

	verdict := "FAILED"
	if r.Overall {
		verdict = "PASSED"
	}
	fmt.Fprintf(&b, "VERIFICATION %s: %s\n", certID, verdict)
	fmt.Fprintf(&b, "  [%s] hash       %s\n", mark(r.Hash.Passed), r.Hash.Detail)
	fmt.Fprintf(&b, "  [%s] timestamp  %s\n", mark(r.Timestamp.Passed), r.Timestamp.Detail)
	fmt.Fprintf(&b, "  [%s] signature  %s\n", mark(r.SignatureClassic.Passed), r.SignatureClassic.Detail)
	if r.PQSealPresent {
		fmt.Fprintf(&b, "  seal: %s\n", r.PQSealDetail)
	}
	return b.String()
}

// RenderCertificateJSON renders the full record as indented JSON with
// sorted keys. The round trip through a generic map lets encoding/json
// emit every level in key order instead of struct field order.
func RenderCertificateJSON(rec *model.CertificateRecord) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "!!"
}
