/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
	"github.com/aeeprotocol/aee-notary/internal/infra/sqlite"
	"github.com/aeeprotocol/aee-notary/internal/notary"
	"github.com/aeeprotocol/aee-notary/internal/quorum"
)

type staticSource struct {
	name string
	at   time.Time
}

func (s *staticSource) Name() string { return s.name }
func (s *staticSource) Query(ctx context.Context) (*quorum.Reading, error) {
	return &quorum.Reading{Source: s.name, Time: s.at}, nil
}

func newTestHandler(t *testing.T) *handler {
	t.Helper()
	ctx := context.Background()
	logger := log.Default()

	db, err := sqlite.InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	t.Cleanup(func() { sqlite.CloseDB(db) })

	at := time.Now().Add(-time.Second)
	sources := []quorum.Source{
		&staticSource{name: "a", at: at},
		&staticSource{name: "b", at: at.Add(10 * time.Millisecond)},
		&staticSource{name: "c", at: at.Add(20 * time.Millisecond)},
	}
	q := quorum.NewWithSources(quorum.Config{}, sources, logger)

	engine := hybrid.NewEngine(false, logger)
	n := notary.New(
		notary.NewBuilder(q, engine, logger),
		notary.NewVerifier(engine, notary.DefaultPolicy(), logger),
		engine,
		sqlite.NewCertificateRepository(db),
		sqlite.NewAuditLogRepository(db),
		logger,
	)
	return newHandler(n, logger)
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func testHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestHandler_CertifyVerifyFlow(t *testing.T) {
	h := newTestHandler(t)
	hash := testHash("report body")

	w := postJSON(t, h, "/api/certify", map[string]any{
		"file_hash": hash,
		"file_name": "report.pdf",
		"file_size": 11,
		"metadata":  map[string]any{"author": "alice"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("certify status: want 201 got %d: %s", w.Code, w.Body.String())
	}

	var rec model.CertificateRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal certificate: %v", err)
	}
	assert.Equal(t, hash, rec.HashSHA256)
	assert.Equal(t, model.StateActive, rec.State)

	w = postJSON(t, h, "/api/verify", map[string]any{
		"certificate_id": rec.CertificateID,
		"file_hash":      hash,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status: want 200 got %d: %s", w.Code, w.Body.String())
	}

	var report model.VerificationReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	assert.True(t, report.Overall)

	req := httptest.NewRequest(http.MethodGet, "/api/certificates/"+rec.CertificateID, nil)
	getW := httptest.NewRecorder()
	h.ServeHTTP(getW, req)
	assert.Equal(t, http.StatusOK, getW.Code)
}

func TestHandler_CertifyBadHash(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h, "/api/certify", map[string]any{"file_hash": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_VerifyUnknownCertificate(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(t, h, "/api/verify", map[string]any{
		"certificate_id": "AEE-0-missing",
		"file_hash":      testHash("x"),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_QuorumFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	logger := log.Default()

	db, err := sqlite.InitDB(ctx, ":memory:")
	if err != nil {
		t.Fatalf("InitDB error: %v", err)
	}
	t.Cleanup(func() { sqlite.CloseDB(db) })

	q := quorum.NewWithSources(quorum.Config{}, nil, logger)
	engine := hybrid.NewEngine(false, logger)
	n := notary.New(
		notary.NewBuilder(q, engine, logger),
		notary.NewVerifier(engine, notary.DefaultPolicy(), logger),
		engine,
		sqlite.NewCertificateRepository(db),
		sqlite.NewAuditLogRepository(db),
		logger,
	)
	h := newHandler(n, logger)

	w := postJSON(t, h, "/api/certify", map[string]any{"file_hash": testHash("x")})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_ChangeState(t *testing.T) {
	h := newTestHandler(t)
	hash := testHash("to revoke")

	w := postJSON(t, h, "/api/certify", map[string]any{"file_hash": hash})
	if w.Code != http.StatusCreated {
		t.Fatalf("certify status: want 201 got %d", w.Code)
	}
	var rec model.CertificateRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal certificate: %v", err)
	}

	w = postJSON(t, h, "/api/manage/state", map[string]any{
		"certificate_id": rec.CertificateID,
		"state":          "revoked",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// terminal state, further transitions rejected
	w = postJSON(t, h, "/api/manage/state", map[string]any{
		"certificate_id": rec.CertificateID,
		"state":          "expired",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_WrongContentType(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/certify", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandler_UnknownPath(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
