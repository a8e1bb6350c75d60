/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// AuditLogRepository handles the append-only audit trail.
type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Append inserts an audit event and returns the inserted id.
func (r *AuditLogRepository) Append(ctx context.Context, ev *model.AuditEvent) (int64, error) {
	const q = `
		INSERT INTO audit_events (event_id, certificate_id, event_type, result, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q, ev.EventID, ev.CertificateID, ev.EventType, ev.Result, ev.Detail, ev.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert audit event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListByCertificateID returns all audit events for a certificate in
// insertion order.
func (r *AuditLogRepository) ListByCertificateID(ctx context.Context, certID string) ([]*model.AuditEvent, error) {
	const q = `
		SELECT id, event_id, certificate_id, event_type, result, detail, created_at
		FROM audit_events
		WHERE certificate_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, certID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []*model.AuditEvent
	for rows.Next() {
		var ev model.AuditEvent
		var detail sql.NullString
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.CertificateID, &ev.EventType, &ev.Result, &detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Detail = detail.String
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
