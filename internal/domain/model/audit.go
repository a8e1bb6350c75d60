/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

import "time"

// Audit event types.
const (
	EventCertified    = "certified"
	EventVerified     = "verified"
	EventStateChanged = "state_changed"
)

// AuditEvent is one entry of the append-only audit trail.
type AuditEvent struct {
	ID            int64     `json:"-"`
	EventID       string    `json:"event_id"`
	CertificateID string    `json:"certificate_id"`
	EventType     string    `json:"event_type"`
	Result        string    `json:"result"`
	Detail        string    `json:"detail,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
