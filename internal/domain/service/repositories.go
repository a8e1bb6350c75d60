/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package service

import (
	"context"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// CertificateRepository persists issued certificates.
type CertificateRepository interface {
	Create(ctx context.Context, rec *model.CertificateRecord) (int64, error)
	FindByCertificateID(ctx context.Context, certID string) (*model.CertificateRecord, error)
	FindByHash(ctx context.Context, hash string) (*model.CertificateRecord, error)
	UpdateState(ctx context.Context, certID string, next model.State) error
}

// AuditLogRepository records certification and verification events.
type AuditLogRepository interface {
	Append(ctx context.Context, ev *model.AuditEvent) (int64, error)
	ListByCertificateID(ctx context.Context, certID string) ([]*model.AuditEvent, error)
}
