/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package notary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/domain/service"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
)

const hashChunkSize = 8192

// Notary is the certification service. It issues certificates with a fresh
// key pair per certification, persists them and records an audit trail.
type Notary struct {
	builder  *Builder
	verifier *Verifier
	engine   *hybrid.Engine
	certs    service.CertificateRepository
	audit    service.AuditLogRepository
	logger   *log.Logger
}

func New(builder *Builder, verifier *Verifier, engine *hybrid.Engine,
	certs service.CertificateRepository, audit service.AuditLogRepository, logger *log.Logger) *Notary {
	if logger == nil {
		logger = log.Default()
	}
	return &Notary{
		builder:  builder,
		verifier: verifier,
		engine:   engine,
		certs:    certs,
		audit:    audit,
		logger:   logger,
	}
}

// CertifyHash issues and persists a certificate for an already-computed
// file hash. Private key material lives only for the duration of the call.
func (n *Notary) CertifyHash(ctx context.Context, fileHash string, file model.FileDescriptor, metadata map[string]any) (*model.CertificateRecord, error) {
	kp, err := n.engine.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	rec, err := n.builder.Build(ctx, fileHash, file, metadata, kp)
	if err != nil {
		return nil, err
	}

	if _, err := n.certs.Create(ctx, rec); err != nil {
		return nil, err
	}
	n.appendAudit(ctx, rec.CertificateID, model.EventCertified, "issued",
		fmt.Sprintf("hash=%s seal=%t", rec.HashSHA256, rec.Signatures.SealPresent()))
	return rec, nil
}

// CertifyReader hashes r in fixed-size chunks and certifies the result.
func (n *Notary) CertifyReader(ctx context.Context, r io.Reader, file model.FileDescriptor, metadata map[string]any) (*model.CertificateRecord, error) {
	hash, size, err := HashReader(r)
	if err != nil {
		return nil, err
	}
	if file.SizeBytes == 0 {
		file.SizeBytes = size
	}
	return n.CertifyHash(ctx, hash, file, metadata)
}

// VerifyCertificate looks up a stored certificate and verifies it against
// the current file hash. Certificates outside the active state are refused
// before any cryptographic work.
func (n *Notary) VerifyCertificate(ctx context.Context, certID, currentFileHash string) (*model.VerificationReport, error) {
	rec, err := n.certs.FindByCertificateID(ctx, certID)
	if err != nil {
		return nil, err
	}
	switch rec.State {
	case model.StateRevoked:
		return nil, fmt.Errorf("%w: certificate %s", domain.ErrRevoked, certID)
	case model.StateExpired:
		return nil, fmt.Errorf("%w: certificate %s", domain.ErrExpired, certID)
	}

	report, err := n.verifier.Verify(rec, currentFileHash)
	if err != nil {
		return nil, err
	}

	result := "failed"
	if report.Overall {
		result = "passed"
	}
	n.appendAudit(ctx, certID, model.EventVerified, result,
		fmt.Sprintf("hash=%t timestamp=%t signature=%t",
			report.Hash.Passed, report.Timestamp.Passed, report.SignatureClassic.Passed))
	return report, nil
}

// Lookup returns a stored certificate by its identifier.
func (n *Notary) Lookup(ctx context.Context, certID string) (*model.CertificateRecord, error) {
	return n.certs.FindByCertificateID(ctx, certID)
}

// LookupByHash returns the stored certificate for a file hash.
func (n *Notary) LookupByHash(ctx context.Context, fileHash string) (*model.CertificateRecord, error) {
	if err := model.ValidateFileHash(fileHash); err != nil {
		return nil, err
	}
	return n.certs.FindByHash(ctx, fileHash)
}

// ChangeState transitions a certificate's lifecycle state.
func (n *Notary) ChangeState(ctx context.Context, certID string, next model.State) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown state %q", domain.ErrValidation, next)
	}
	if err := n.certs.UpdateState(ctx, certID, next); err != nil {
		return err
	}
	n.appendAudit(ctx, certID, model.EventStateChanged, string(next), "")
	return nil
}

// AuditTrail lists audit events for a certificate.
func (n *Notary) AuditTrail(ctx context.Context, certID string) ([]*model.AuditEvent, error) {
	return n.audit.ListByCertificateID(ctx, certID)
}

func (n *Notary) appendAudit(ctx context.Context, certID, eventType, result, detail string) {
	ev := &model.AuditEvent{
		EventID:       uuid.NewString(),
		CertificateID: certID,
		EventType:     eventType,
		Result:        result,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := n.audit.Append(ctx, ev); err != nil {
		n.logger.Printf("notary: audit append failed for %s: %v", certID, err)
	}
}

// HashReader computes the lowercase hex SHA-256 of r, reading in
// fixed-size chunks, and returns the byte count alongside.
func HashReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	var total int64
	for {
		nr, err := r.Read(buf)
		if nr > 0 {
			h.Write(buf[:nr])
			total += int64(nr)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("read: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), total, nil
}
