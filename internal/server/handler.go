/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/notary"
)

const (
	maxRequestBodyBytes = 1 << 20 // 1 MiB covers any certification request.
	certificatePrefix   = "/api/certificates/"
)

type handler struct {
	notary *notary.Notary
	logger *log.Logger
}

type responseSpec struct {
	status      int
	body        []byte
	contentType string
}

func newHandler(n *notary.Notary, logger *log.Logger) *handler {
	return &handler{
		notary: n,
		logger: logger,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/certify" && r.Method == http.MethodPost:
		h.certify(w, r)
	case r.URL.Path == "/api/verify" && r.Method == http.MethodPost:
		h.verify(w, r)
	case r.URL.Path == "/api/manage/state" && r.Method == http.MethodPost:
		h.changeState(w, r)
	case strings.HasPrefix(r.URL.Path, certificatePrefix) && r.Method == http.MethodGet:
		h.getCertificate(w, r)
	default:
		http.NotFound(w, r)
	}
}

type certifyRequest struct {
	FileHash string         `json:"file_hash"`
	FileName string         `json:"file_name"`
	FileSize int64          `json:"file_size"`
	Metadata map[string]any `json:"metadata"`
}

func (h *handler) certify(w http.ResponseWriter, r *http.Request) {
	var req certifyRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	rec, err := h.notary.CertifyHash(r.Context(), req.FileHash,
		model.FileDescriptor{Name: req.FileName, SizeBytes: req.FileSize}, req.Metadata)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

type verifyRequest struct {
	CertificateID string `json:"certificate_id"`
	FileHash      string `json:"file_hash"`
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	report, err := h.notary.VerifyCertificate(r.Context(), req.CertificateID, req.FileHash)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

type changeStateRequest struct {
	CertificateID string `json:"certificate_id"`
	State         string `json:"state"`
}

func (h *handler) changeState(w http.ResponseWriter, r *http.Request) {
	var req changeStateRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	if err := h.notary.ChangeState(r.Context(), req.CertificateID, model.State(req.State)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"certificate_id": req.CertificateID,
		"state":          req.State,
	})
}

func (h *handler) getCertificate(w http.ResponseWriter, r *http.Request) {
	certID := strings.TrimPrefix(r.URL.Path, certificatePrefix)
	if certID == "" || strings.Contains(certID, "/") {
		http.NotFound(w, r)
		return
	}

	rec, err := h.notary.Lookup(r.Context(), certID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *handler) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		h.logger.Printf("content type mismatch: expected application/json, actual %v", ct)
		http.Error(w, "This endpoint only accepts Content-Type: application/json", http.StatusUnsupportedMediaType)
		return false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		h.logger.Printf("failed reading request body: %v", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := r.Body.Close(); err != nil {
		h.logger.Printf("failed closing request body: %v", err)
		http.Error(w, "failed to close request body", http.StatusBadRequest)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		h.logger.Printf("failed parsing request body: %v", err)
		http.Error(w, "failed to parse request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	h.logger.Printf("request failed: %v", err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrRevoked), errors.Is(err, domain.ErrExpired):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, domain.ErrQuorum):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Printf("failed encoding response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeResponse(w, responseSpec{
		status:      status,
		body:        body,
		contentType: "application/json",
	})
}

func (h *handler) writeResponse(w http.ResponseWriter, spec responseSpec) {
	w.Header().Set("Server", "AEE-Notary/2.2")

	if len(spec.body) > 0 {
		for k, v := range defaultHeaders {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", spec.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(spec.body)))
		w.WriteHeader(spec.status)
		if _, err := w.Write(spec.body); err != nil {
			h.logger.Printf("failed writing response body: %v", err)
		}
		return
	}

	w.WriteHeader(spec.status)
}

var defaultHeaders = map[string]string{
	"Cache-Control":           "no-store",
	"X-Content-Type-Options":  "nosniff",
	"Content-Security-Policy": "default-src 'none'",
	"Referrer-Policy":         "no-referrer",
}
