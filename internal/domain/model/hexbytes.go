/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HexBytes is a byte string rendered as a lowercase hex string on the wire.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	if len(h) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = nil
		return nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode hex field: %w", err)
	}
	*h = raw
	return nil
}

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}
