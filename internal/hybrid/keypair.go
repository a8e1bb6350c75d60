/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package hybrid

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// KeyIDLen is the length of the truncated hex key identifier.
const KeyIDLen = 16

// KeyPair carries the classical signing key and, when the post-quantum
// layer is enabled, the encapsulation key. The key identifier binds the
// two halves together.
type KeyPair struct {
	ClassicalPublic  ed25519.PublicKey
	ClassicalPrivate ed25519.PrivateKey
	PQPublic         []byte
	PQPrivate        []byte
	KeyID            string
	CreatedAt        string
}

// PublicKeys returns the certificate form of the public halves.
func (kp *KeyPair) PublicKeys() model.PublicKeys {
	pk := model.PublicKeys{
		ClassicalPublic: hex.EncodeToString(kp.ClassicalPublic),
		KeyID:           kp.KeyID,
	}
	if len(kp.PQPublic) > 0 {
		pk.PQPublic = hex.EncodeToString(kp.PQPublic)
	}
	return pk
}

// Destroy zeroes the private key material. The pair must not be used for
// signing afterwards.
func (kp *KeyPair) Destroy() {
	for i := range kp.ClassicalPrivate {
		kp.ClassicalPrivate[i] = 0
	}
	for i := range kp.PQPrivate {
		kp.PQPrivate[i] = 0
	}
	kp.ClassicalPrivate = nil
	kp.PQPrivate = nil
}

func deriveKeyID(classicalPub ed25519.PublicKey, pqPub []byte) string {
	h := sha256.New()
	h.Write(classicalPub)
	h.Write(pqPub)
	return hex.EncodeToString(h.Sum(nil))[:KeyIDLen]
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
