/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package notary

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/aeeprotocol/aee-notary/internal/canonical"
	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
)

// Policy bounds what the verifier accepts about a certificate's consensus
// record. MaxAge of zero disables the age check.
type Policy struct {
	MinSuccessful  int
	MaxDeviationMs float64
	MaxAge         time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MinSuccessful: 3, MaxDeviationMs: 500}
}

// Verifier checks issued certificates in three stages: hash integrity,
// timestamp plausibility and signature validity. All three stages run every
// time and appear in the report; the overall verdict holds only when every
// stage passed.
type Verifier struct {
	engine *hybrid.Engine
	policy Policy
	logger *log.Logger
	now    func() time.Time
}

func NewVerifier(engine *hybrid.Engine, policy Policy, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	if policy.MinSuccessful <= 0 {
		policy.MinSuccessful = DefaultPolicy().MinSuccessful
	}
	if policy.MaxDeviationMs <= 0 {
		policy.MaxDeviationMs = DefaultPolicy().MaxDeviationMs
	}
	return &Verifier{engine: engine, policy: policy, logger: logger, now: time.Now}
}

// Verify checks rec against the independently computed hash of the current
// file content. Structural defects in the record return an error; a
// well-formed record that fails a stage produces a report with the failing
// stage marked and Overall false.
func (v *Verifier) Verify(rec *model.CertificateRecord, currentFileHash string) (*model.VerificationReport, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: missing certificate", domain.ErrValidation)
	}
	if err := model.ValidateFileHash(currentFileHash); err != nil {
		return nil, err
	}
	if err := model.ValidateFileHash(rec.HashSHA256); err != nil {
		return nil, err
	}
	if err := rec.Signatures.Validate(); err != nil {
		return nil, err
	}

	report := &model.VerificationReport{}

	report.Hash = v.checkHash(rec.HashSHA256, currentFileHash)
	report.Timestamp = v.checkTimestamp(&rec.TimestampNTP)

	sigStage, sealPresent, sealDetail, err := v.checkSignature(rec)
	if err != nil {
		return nil, err
	}
	report.SignatureClassic = sigStage
	report.PQSealPresent = sealPresent
	report.PQSealDetail = sealDetail

	report.Overall = report.Hash.Passed && report.Timestamp.Passed && report.SignatureClassic.Passed
	return report, nil
}

func (v *Verifier) checkHash(recorded, current string) model.StageResult {
	if subtle.ConstantTimeCompare([]byte(recorded), []byte(current)) == 1 {
		return model.StageResult{Passed: true, Detail: "file hash matches certificate"}
	}
	return model.StageResult{Detail: "file hash does not match certificate"}
}

func (v *Verifier) checkTimestamp(c *model.TimeConsensusRecord) model.StageResult {
	switch {
	case c.TimestampUnix <= 0:
		return model.StageResult{Detail: "consensus timestamp missing"}
	case c.ServersSuccessful < v.policy.MinSuccessful:
		return model.StageResult{Detail: fmt.Sprintf("only %d sources answered, need %d", c.ServersSuccessful, v.policy.MinSuccessful)}
	case c.ServersUsedConsensus < v.policy.MinSuccessful ||
		c.ServersUsedConsensus > c.ServersSuccessful ||
		c.ServersSuccessful > c.ServersConsulted:
		return model.StageResult{Detail: "inconsistent consensus source counts"}
	case c.DeviationMs > v.policy.MaxDeviationMs:
		return model.StageResult{Detail: fmt.Sprintf("consensus deviation %.2fms exceeds %.2fms", c.DeviationMs, v.policy.MaxDeviationMs)}
	}

	ts := c.Time()
	if ts.After(v.now().Add(time.Minute)) {
		return model.StageResult{Detail: "consensus timestamp lies in the future"}
	}
	if v.policy.MaxAge > 0 && v.now().Sub(ts) > v.policy.MaxAge {
		return model.StageResult{Detail: fmt.Sprintf("certificate older than %s", v.policy.MaxAge)}
	}
	return model.StageResult{Passed: true, Detail: "consensus timestamp plausible"}
}

func (v *Verifier) checkSignature(rec *model.CertificateRecord) (model.StageResult, bool, string, error) {
	pub, err := hex.DecodeString(rec.PublicKeys.ClassicalPublic)
	if err != nil || len(pub) != hybrid.ClassicalPublicKeySize {
		return model.StageResult{}, false, "", fmt.Errorf("%w: malformed classical public key", domain.ErrValidation)
	}

	encoded, err := canonical.Encode(rec.Payload())
	if err != nil {
		return model.StageResult{}, false, "", err
	}

	ok, check, err := v.engine.Verify(encoded, &rec.Signatures, pub)
	if err != nil {
		return model.StageResult{}, false, "", err
	}
	stage := model.StageResult{Passed: ok, Detail: check.ClassicalDetail}
	return stage, check.SealPresent, check.SealDetail, nil
}
