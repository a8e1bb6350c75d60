/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package hybrid implements the dual-signature scheme: every payload is
// signed with Ed25519, and when the post-quantum layer is enabled an
// ML-KEM-768 seal is attached alongside. The seal is an additional
// commitment only; its absence or failure never weakens the classical
// signature, which remains the sole validity anchor.
package hybrid

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/veraison/go-cose"
	"golang.org/x/crypto/hkdf"

	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

const (
	ClassicalPublicKeySize = ed25519.PublicKeySize
	ClassicalSignatureSize = ed25519.SignatureSize

	authKeySize = 32
)

// KDF parameters for deriving the seal authentication key from the
// encapsulated shared secret. Changing either breaks verification of all
// previously issued seals.
var (
	authKeySalt = []byte("AEE-PQC-v2.1-AuthKey")
	authKeyInfo = []byte("authentication-key")
)

var sealScheme = mlkem768.Scheme()

// Engine produces and verifies dual signatures.
type Engine struct {
	pqEnabled bool
	logger    *log.Logger
}

func NewEngine(pqEnabled bool, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{pqEnabled: pqEnabled, logger: logger}
}

// PQEnabled reports whether the post-quantum layer is active.
func (e *Engine) PQEnabled() bool { return e.pqEnabled }

// GenerateKeyPair creates a fresh signing key pair. The post-quantum key is
// generated only when the layer is enabled; a failure there degrades the
// pair to classical-only rather than failing key generation.
func (e *Engine) GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: ed25519 key generation: %v", domain.ErrCrypto, err)
	}

	kp := &KeyPair{
		ClassicalPublic:  pub,
		ClassicalPrivate: priv,
		CreatedAt:        nowISO(),
	}

	if e.pqEnabled {
		pqPub, pqPriv, err := sealScheme.GenerateKeyPair()
		if err != nil {
			e.logger.Printf("hybrid: ML-KEM key generation failed, continuing classical-only: %v", err)
		} else {
			pubBytes, err := pqPub.MarshalBinary()
			if err != nil {
				return nil, fmt.Errorf("%w: marshal ML-KEM public key: %v", domain.ErrCrypto, err)
			}
			privBytes, err := pqPriv.MarshalBinary()
			if err != nil {
				return nil, fmt.Errorf("%w: marshal ML-KEM private key: %v", domain.ErrCrypto, err)
			}
			kp.PQPublic = pubBytes
			kp.PQPrivate = privBytes
		}
	}

	kp.KeyID = deriveKeyID(kp.ClassicalPublic, kp.PQPublic)
	return kp, nil
}

// Sign produces the dual signature over payload. The classical signature is
// mandatory; the post-quantum seal is attempted when the layer is enabled
// and the pair carries an encapsulation key, and any failure there is
// logged and results in an absent seal.
func (e *Engine) Sign(payload []byte, kp *KeyPair) (*model.DualSignature, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}
	if kp == nil || len(kp.ClassicalPrivate) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: missing classical private key", domain.ErrValidation)
	}

	signer, err := cose.NewSigner(cose.AlgorithmEdDSA, kp.ClassicalPrivate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	classic, err := signer.Sign(rand.Reader, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	sig := &model.DualSignature{
		SignatureClassic: classic,
		Timestamp:        nowISO(),
	}

	if e.pqEnabled && len(kp.PQPublic) > 0 {
		seal, tag, err := e.seal(payload, kp.PQPublic)
		if err != nil {
			e.logger.Printf("hybrid: post-quantum seal failed, certificate is classical-only: %v", err)
		} else {
			sig.PQSeal = seal
			sig.PQAuthTag = tag
		}
	}

	return sig, nil
}

func (e *Engine) seal(payload, pqPublic []byte) (seal, tag []byte, err error) {
	pk, err := sealScheme.UnmarshalBinaryPublicKey(pqPublic)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal ML-KEM public key: %w", err)
	}
	ct, ss, err := sealScheme.Encapsulate(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("ML-KEM encapsulation: %w", err)
	}

	authKey, err := deriveAuthKey(ss)
	if err != nil {
		return nil, nil, err
	}

	mac := hmac.New(sha256.New, authKey)
	mac.Write(payload)
	return ct, mac.Sum(nil), nil
}

// Verify checks the dual signature against payload with the holder's
// classical public key. A mismatching signature yields ok=false with a nil
// error; only structural or operational problems return an error. The seal
// is reported on but never verified here, because opening it requires the
// holder's private ML-KEM key.
func (e *Engine) Verify(payload []byte, sig *model.DualSignature, classicalPublic ed25519.PublicKey) (bool, *model.SignatureCheck, error) {
	if sig == nil {
		return false, nil, fmt.Errorf("%w: missing signature", domain.ErrValidation)
	}
	if err := sig.Validate(); err != nil {
		return false, nil, err
	}
	if len(payload) == 0 {
		return false, nil, fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}
	if len(classicalPublic) != ClassicalPublicKeySize {
		return false, nil, fmt.Errorf("%w: classical public key must be %d bytes", domain.ErrValidation, ClassicalPublicKeySize)
	}

	check := &model.SignatureCheck{SealPresent: sig.SealPresent()}
	if check.SealPresent {
		check.SealDetail = "seal present, auditor verification required to open"
	} else {
		check.SealDetail = "seal absent"
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmEdDSA, classicalPublic)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}
	err = verifier.Verify(payload, sig.SignatureClassic)
	switch {
	case err == nil:
		check.ClassicalValid = true
		check.ClassicalDetail = "classical signature valid"
	case errors.Is(err, cose.ErrVerification):
		check.ClassicalDetail = "classical signature invalid"
	default:
		return false, nil, fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}

	return check.ClassicalValid, check, nil
}

// AuditorOpenSeal decapsulates the seal with the holder's private ML-KEM key
// and recomputes the authentication tag over payload. The comparison is
// constant time. A tag mismatch is a negative result, not an error.
func (e *Engine) AuditorOpenSeal(seal, payload, expectedTag, pqPrivate []byte) (bool, string, error) {
	if len(seal) == 0 || len(expectedTag) == 0 {
		return false, "", fmt.Errorf("%w: seal and tag are required", domain.ErrValidation)
	}
	if len(payload) == 0 {
		return false, "", fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}

	sk, err := sealScheme.UnmarshalBinaryPrivateKey(pqPrivate)
	if err != nil {
		return false, "", fmt.Errorf("%w: unmarshal ML-KEM private key: %v", domain.ErrValidation, err)
	}
	ss, err := sealScheme.Decapsulate(sk, seal)
	if err != nil {
		return false, "", fmt.Errorf("%w: ML-KEM decapsulation: %v", domain.ErrCrypto, err)
	}

	authKey, err := deriveAuthKey(ss)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}

	mac := hmac.New(sha256.New, authKey)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expectedTag) {
		return false, "authentication tag mismatch", nil
	}
	return true, "seal opened, payload commitment verified", nil
}

func deriveAuthKey(sharedSecret []byte) ([]byte, error) {
	key := make([]byte, authKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, authKeySalt, authKeyInfo), key); err != nil {
		return nil, fmt.Errorf("HKDF expand: %w", err)
	}
	return key, nil
}
