/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// CertificateRepository handles certificate persistence.
type CertificateRepository struct {
	db *sql.DB
}

func NewCertificateRepository(db *sql.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts an issued certificate and returns the inserted id.
func (r *CertificateRepository) Create(ctx context.Context, rec *model.CertificateRecord) (int64, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal certificate: %w", err)
	}

	const q = `
		INSERT INTO certificates (cert_id, hash, state, record, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q, rec.CertificateID, rec.HashSHA256, string(rec.State), blob, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert certificate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByCertificateID returns a certificate by its public identifier.
func (r *CertificateRepository) FindByCertificateID(ctx context.Context, certID string) (*model.CertificateRecord, error) {
	const q = `
		SELECT record, state
		FROM certificates
		WHERE cert_id = ?
		LIMIT 1
	`
	return r.findOne(ctx, q, certID)
}

// FindByHash returns the most recently issued certificate for a file hash.
func (r *CertificateRepository) FindByHash(ctx context.Context, hash string) (*model.CertificateRecord, error) {
	const q = `
		SELECT record, state
		FROM certificates
		WHERE hash = ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.findOne(ctx, q, hash)
}

func (r *CertificateRepository) findOne(ctx context.Context, q string, arg any) (*model.CertificateRecord, error) {
	row := r.db.QueryRowContext(ctx, q, arg)
	var blob []byte
	var state string
	if err := row.Scan(&blob, &state); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: certificate", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan certificate: %w", err)
	}

	var rec model.CertificateRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal certificate: %w", err)
	}
	// the state column is authoritative; the blob may predate a transition
	rec.State = model.State(state)
	return &rec, nil
}

// UpdateState transitions a certificate's lifecycle state, rejecting
// transitions the state machine does not allow.
func (r *CertificateRepository) UpdateState(ctx context.Context, certID string, next model.State) error {
	rec, err := r.FindByCertificateID(ctx, certID)
	if err != nil {
		return err
	}
	if !rec.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot transition %s from %s to %s", domain.ErrValidation, certID, rec.State, next)
	}

	prev := rec.State
	rec.State = next
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}

	// The state predicate makes the read-modify-write safe against a
	// concurrent transition: whichever update commits first wins, the
	// loser matches zero rows.
	const q = `
		UPDATE certificates
		SET state = ?, record = ?
		WHERE cert_id = ? AND state = ?
	`
	res, err := r.db.ExecContext(ctx, q, string(next), blob, certID, string(prev))
	if err != nil {
		return fmt.Errorf("update certificate state: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update certificate state: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: state of %s changed concurrently", domain.ErrValidation, certID)
	}
	return nil
}
