/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aeeprotocol/aee-notary/internal/config"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
	"github.com/aeeprotocol/aee-notary/internal/infra/sqlite"
	"github.com/aeeprotocol/aee-notary/internal/notary"
	"github.com/aeeprotocol/aee-notary/internal/quorum"
)

// Server wires the HTTP listener and request handling stack.
type Server struct {
	cfg     config.Config
	handler *handler
	http    *http.Server
	logger  *log.Logger
	closeDB func() error
}

// New constructs a Server using the provided configuration.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	db, err := sqlite.InitDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	q := quorum.New(quorum.Config{
		Servers:          cfg.NTP.Servers,
		PerSourceTimeout: cfg.NTP.PerSourceTimeout(),
		OverallTimeout:   cfg.NTP.OverallTimeout(),
		MaxDeviationMs:   cfg.NTP.MaxDeviationMs,
		MinSuccessful:    cfg.NTP.MinSuccessful,
	}, logger)

	engine := hybrid.NewEngine(cfg.PQSeal, logger)
	builder := notary.NewBuilder(q, engine, logger)
	verifier := notary.NewVerifier(engine, notary.Policy{
		MinSuccessful:  cfg.Verify.MinSuccessful,
		MaxDeviationMs: cfg.Verify.MaxDeviationMs,
		MaxAge:         cfg.Verify.MaxAge(),
	}, logger)

	n := notary.New(builder, verifier, engine,
		sqlite.NewCertificateRepository(db),
		sqlite.NewAuditLogRepository(db),
		logger)

	h := newHandler(n, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		cfg:     cfg,
		handler: h,
		http:    httpSrv,
		logger:  logger,
		closeDB: func() error { return sqlite.CloseDB(db) },
	}, nil
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Run Notary Server on %s.", s.http.Addr)

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully takes down the HTTP server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	return s.closeDB()
}
