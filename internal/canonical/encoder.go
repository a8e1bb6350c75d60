/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package canonical provides the deterministic encoding layer of the
// certification protocol. Logically equal values always produce identical
// byte sequences, so the SHA-256 of the encoding is a stable content
// identifier. Values with no unambiguous representation (NaN, infinities,
// unsupported types) are rejected rather than silently coerced.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/aeeprotocol/aee-notary/internal/domain"
)

var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.NaNConvert = cbor.NaNConvertReject
	opts.InfConvert = cbor.InfConvertReject
	opts.Time = cbor.TimeRFC3339Nano

	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("canonical: invalid encoder options: %v", err))
	}
}

// Encode serialises v into its canonical byte form. Map keys and struct
// fields are emitted in sorted order, so key ordering in the input never
// changes the output.
func Encode(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return data, nil
}

// Hash returns the lowercase hex SHA-256 of the canonical encoding of v.
func Hash(v any) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
