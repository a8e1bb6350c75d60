/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package canonical

import (
	"fmt"
	"math"

	"github.com/aeeprotocol/aee-notary/internal/domain"
)

// Normalize maps v into the JSON value space: all numbers become float64,
// maps become map[string]any and slices become []any. Certificate metadata
// is normalized before signing so that a JSON storage round trip cannot
// change the canonical bytes later.
func Normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("%w: non-finite float", domain.ErrEncoding)
		}
		return val, nil
	case float32:
		return Normalize(float64(val))
	case int:
		return normalizeInt(int64(val))
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return normalizeInt(val)
	case uint:
		return normalizeUint(uint64(val))
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return normalizeUint(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			norm, err := Normalize(elem)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			norm, err := Normalize(elem)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported metadata type %T", domain.ErrEncoding, v)
	}
}

// maxExactInt is the largest integer magnitude float64 represents exactly.
const maxExactInt = int64(1) << 53

func normalizeInt(v int64) (any, error) {
	if v > maxExactInt || v < -maxExactInt {
		return nil, fmt.Errorf("%w: integer %d exceeds exact float range", domain.ErrEncoding, v)
	}
	return float64(v), nil
}

func normalizeUint(v uint64) (any, error) {
	if v > uint64(maxExactInt) {
		return nil, fmt.Errorf("%w: integer %d exceeds exact float range", domain.ErrEncoding, v)
	}
	return float64(v), nil
}

// NormalizeMetadata applies Normalize to a metadata map, treating nil as an
// empty map.
func NormalizeMetadata(md map[string]any) (map[string]any, error) {
	if md == nil {
		return map[string]any{}, nil
	}
	norm, err := Normalize(md)
	if err != nil {
		return nil, err
	}
	return norm.(map[string]any), nil
}
