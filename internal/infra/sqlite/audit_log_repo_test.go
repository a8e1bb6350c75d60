/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

func TestAuditLog_AppendList_OK(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewAuditLogRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	first := &model.AuditEvent{
		EventID:       uuid.NewString(),
		CertificateID: "AEE-1787000000-abababab",
		EventType:     model.EventCertified,
		Result:        "issued",
		Detail:        "seal=true",
		CreatedAt:     now,
	}
	second := &model.AuditEvent{
		EventID:       uuid.NewString(),
		CertificateID: "AEE-1787000000-abababab",
		EventType:     model.EventVerified,
		Result:        "passed",
		CreatedAt:     now,
	}

	if _, err := repo.Append(ctx, first); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if _, err := repo.Append(ctx, second); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	events, err := repo.ListByCertificateID(ctx, "AEE-1787000000-abababab")
	if err != nil {
		t.Fatalf("ListByCertificateID error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != model.EventCertified {
		t.Fatalf("order mismatch: got %q first", events[0].EventType)
	}
	if events[0].Detail != "seal=true" {
		t.Fatalf("detail mismatch: got %q", events[0].Detail)
	}
}

func TestAuditLog_List_Empty(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	defer CloseDB(db)

	repo := NewAuditLogRepository(db)

	events, err := repo.ListByCertificateID(ctx, "AEE-0-missing")
	if err != nil {
		t.Fatalf("ListByCertificateID error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
