/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import (
	"math"
	"time"
)

// TimeConsensusRecord is the outcome of one time-quorum round. It is created
// once per certification and embedded verbatim in the signed payload, so a
// verifier can independently judge how tight the consensus was.
type TimeConsensusRecord struct {
	TimestampUnix        float64            `json:"timestamp_unix" cbor:"timestamp_unix"`
	TimestampISO         string             `json:"timestamp_iso" cbor:"timestamp_iso"`
	ServersConsulted     int                `json:"servers_consulted" cbor:"servers_consulted"`
	ServersSuccessful    int                `json:"servers_successful" cbor:"servers_successful"`
	ServersUsedConsensus int                `json:"servers_used_consensus" cbor:"servers_used_consensus"`
	DeviationMs          float64            `json:"deviation_ms" cbor:"deviation_ms"`
	PerServerDetail      []TimeSourceDetail `json:"per_server_detail" cbor:"per_server_detail"`
}

// TimeSourceDetail is the diagnostic reading of a single successful source.
type TimeSourceDetail struct {
	Server    string  `json:"server" cbor:"server"`
	Timestamp float64 `json:"timestamp" cbor:"timestamp"`
	OffsetMs  float64 `json:"offset_ms" cbor:"offset_ms"`
	DelayMs   float64 `json:"delay_ms" cbor:"delay_ms"`
}

// Time converts the consensus Unix timestamp (fractional seconds) to UTC.
func (r *TimeConsensusRecord) Time() time.Time {
	sec, frac := math.Modf(r.TimestampUnix)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
