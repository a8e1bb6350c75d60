/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package model

// State is the lifecycle state of an issued certificate.
type State string

const (
	StateActive  State = "active"
	StateRevoked State = "revoked"
	StateExpired State = "expired"
)

func (s State) Valid() bool {
	switch s {
	case StateActive, StateRevoked, StateExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition is allowed. Revocation and
// expiry are terminal.
func (s State) CanTransitionTo(next State) bool {
	if s != StateActive {
		return false
	}
	return next == StateRevoked || next == StateExpired
}
