/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aeeprotocol/aee-notary/internal/domain"
)

func TestValidateFileHash(t *testing.T) {
	valid := strings.Repeat("ab", 32)
	if err := ValidateFileHash(valid); err != nil {
		t.Fatalf("ValidateFileHash error: %v", err)
	}

	for _, bad := range []string{
		"",
		"abc",
		strings.Repeat("AB", 32),
		strings.Repeat("zz", 32),
		valid + "ab",
	} {
		err := ValidateFileHash(bad)
		assert.True(t, errors.Is(err, domain.ErrValidation), "hash %q", bad)
	}
}

func TestState_Transitions(t *testing.T) {
	assert.True(t, StateActive.CanTransitionTo(StateRevoked))
	assert.True(t, StateActive.CanTransitionTo(StateExpired))
	assert.False(t, StateRevoked.CanTransitionTo(StateActive))
	assert.False(t, StateRevoked.CanTransitionTo(StateExpired))
	assert.False(t, StateExpired.CanTransitionTo(StateRevoked))

	assert.True(t, StateActive.Valid())
	assert.False(t, State("bogus").Valid())
}

func TestDualSignature_Validate(t *testing.T) {
	sig := DualSignature{SignatureClassic: make([]byte, 64)}
	if err := sig.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	assert.False(t, sig.SealPresent())

	sig.PQSeal = []byte{1}
	err := sig.Validate()
	assert.True(t, errors.Is(err, domain.ErrValidation))

	sig.PQAuthTag = []byte{2}
	if err := sig.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	assert.True(t, sig.SealPresent())

	empty := DualSignature{}
	assert.True(t, errors.Is(empty.Validate(), domain.ErrValidation))
}

func TestHexBytes_JSONRoundtrip(t *testing.T) {
	in := HexBytes{0xde, 0xad, 0xbe, 0xef}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	assert.Equal(t, `"deadbeef"`, string(raw))

	var out HexBytes
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	assert.Equal(t, in, out)

	var null HexBytes
	if err := json.Unmarshal([]byte("null"), &null); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	assert.Nil(t, null)
}

func TestTimeConsensusRecord_Time(t *testing.T) {
	r := TimeConsensusRecord{TimestampUnix: 1787000000.5}
	got := r.Time()
	assert.Equal(t, int64(1787000000), got.Unix())
	assert.Equal(t, 500000000, got.Nanosecond())
}
