/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package canonical

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aeeprotocol/aee-notary/internal/domain"
)

func TestEncode_KeyOrderIndependent(t *testing.T) {
	a := map[string]any{"b": 2.0, "a": 1.0, "c": map[string]any{"y": "v", "x": "u"}}
	b := map[string]any{"c": map[string]any{"x": "u", "y": "v"}, "a": 1.0, "b": 2.0}

	ea, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	eb, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !bytes.Equal(ea, eb) {
		t.Fatalf("encodings differ:\n%x\n%x", ea, eb)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	v := map[string]any{"name": "report.pdf", "size": 1024.0, "tags": []any{"x", "y"}}

	first, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode error: %v", err)
		}
		assert.Equal(t, first, again)
	}
}

func TestHash_LeafDifferenceChangesHash(t *testing.T) {
	a := map[string]any{"outer": map[string]any{"inner": "value-1"}}
	b := map[string]any{"outer": map[string]any{"inner": "value-2"}}

	ha, err := Hash(a)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	hb, err := Hash(b)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	assert.Len(t, ha, 64)
	assert.NotEqual(t, ha, hb)
}

func TestEncode_RejectsNaNAndInf(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(map[string]any{"v": v})
		if err == nil {
			t.Fatalf("expected error for %v", v)
		}
		assert.True(t, errors.Is(err, domain.ErrEncoding))
	}
}

func TestNormalize_IntsBecomeFloats(t *testing.T) {
	got, err := Normalize(map[string]any{"n": 42, "u": uint64(7), "nested": []any{int32(3)}})
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	m := got.(map[string]any)
	assert.Equal(t, float64(42), m["n"])
	assert.Equal(t, float64(7), m["u"])
	assert.Equal(t, []any{float64(3)}, m["nested"])
}

func TestNormalize_RejectsInexactIntegers(t *testing.T) {
	exact := int64(1) << 53
	got, err := Normalize(map[string]any{"n": exact, "neg": -exact, "u": uint64(exact)})
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	m := got.(map[string]any)
	assert.Equal(t, float64(exact), m["n"])

	for _, v := range []any{exact + 1, -exact - 1, uint64(exact) + 1, uint64(18446744073709551615)} {
		_, err := Normalize(map[string]any{"n": v})
		if err == nil {
			t.Fatalf("expected error for %v", v)
		}
		assert.True(t, errors.Is(err, domain.ErrEncoding))
	}
}

func TestNormalize_RejectsUnsupported(t *testing.T) {
	_, err := Normalize(map[string]any{"ch": make(chan int)})
	assert.True(t, errors.Is(err, domain.ErrEncoding))

	_, err = Normalize(map[string]any{"v": math.NaN()})
	assert.True(t, errors.Is(err, domain.ErrEncoding))
}

func TestNormalizeMetadata_NilBecomesEmpty(t *testing.T) {
	got, err := NormalizeMetadata(nil)
	if err != nil {
		t.Fatalf("NormalizeMetadata error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
