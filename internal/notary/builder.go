/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package notary assembles, signs and verifies file certificates. A
// certificate binds a file hash to a quorum timestamp and a dual signature;
// the builder issues them, the verifier re-derives every claim from the
// stored record.
package notary

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aeeprotocol/aee-notary/internal/canonical"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
	"github.com/aeeprotocol/aee-notary/internal/quorum"
)

// ProtocolVersion identifies the certificate format.
const ProtocolVersion = "2.2.0-HybridPQC"

// Builder issues certificates.
type Builder struct {
	quorum *quorum.TimeQuorum
	engine *hybrid.Engine
	logger *log.Logger
	now    func() time.Time
}

func NewBuilder(q *quorum.TimeQuorum, engine *hybrid.Engine, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{quorum: q, engine: engine, logger: logger, now: time.Now}
}

// Build issues a certificate for a file hash. The timestamp comes from the
// time quorum; a failed quorum aborts certification, there is no local
// clock fallback. Metadata is normalized into the JSON value space before
// signing so later storage round trips cannot change the signed bytes.
func (b *Builder) Build(ctx context.Context, fileHash string, file model.FileDescriptor, metadata map[string]any, kp *hybrid.KeyPair) (*model.CertificateRecord, error) {
	if err := model.ValidateFileHash(fileHash); err != nil {
		return nil, err
	}

	md, err := canonical.NormalizeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	consensus, err := b.quorum.Consensus(ctx)
	if err != nil {
		return nil, err
	}

	payload := model.CertificatePayload{
		HashSHA256:   fileHash,
		TimestampNTP: *consensus,
		File:         file,
		Metadata:     md,
		PublicKeys:   kp.PublicKeys(),
	}

	encoded, err := canonical.Encode(&payload)
	if err != nil {
		return nil, err
	}

	sig, err := b.engine.Sign(encoded, kp)
	if err != nil {
		return nil, err
	}

	rec := &model.CertificateRecord{
		CertificateID:      fmt.Sprintf("AEE-%d-%s", int64(consensus.TimestampUnix), fileHash[:8]),
		CertificatePayload: payload,
		Signatures:         *sig,
		ProtocolVersion:    ProtocolVersion,
		CertificationDate:  b.now().UTC().Format(time.RFC3339Nano),
		State:              model.StateActive,
	}

	b.logger.Printf("notary: issued %s (seal=%t, quorum %d/%d)",
		rec.CertificateID, sig.SealPresent(), consensus.ServersUsedConsensus, consensus.ServersConsulted)
	return rec, nil
}
