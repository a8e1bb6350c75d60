/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// certify-file issues a certificate for a local file and prints it, or
// verifies the file against a previously issued certificate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aeeprotocol/aee-notary/internal/config"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
	"github.com/aeeprotocol/aee-notary/internal/hybrid"
	"github.com/aeeprotocol/aee-notary/internal/infra/sqlite"
	"github.com/aeeprotocol/aee-notary/internal/notary"
	"github.com/aeeprotocol/aee-notary/internal/quorum"
	"github.com/aeeprotocol/aee-notary/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	verifyID := flag.String("verify", "", "verify the file against this certificate id instead of certifying")
	asJSON := flag.Bool("json", false, "print the full certificate as JSON")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := log.New(os.Stderr, "certify-file ", log.LstdFlags)

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	ctx := context.Background()
	db, err := sqlite.InitDB(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer sqlite.CloseDB(db)

	q := quorum.New(quorum.Config{
		Servers:          cfg.NTP.Servers,
		PerSourceTimeout: cfg.NTP.PerSourceTimeout(),
		OverallTimeout:   cfg.NTP.OverallTimeout(),
		MaxDeviationMs:   cfg.NTP.MaxDeviationMs,
		MinSuccessful:    cfg.NTP.MinSuccessful,
	}, logger)
	engine := hybrid.NewEngine(cfg.PQSeal, logger)
	n := notary.New(
		notary.NewBuilder(q, engine, logger),
		notary.NewVerifier(engine, notary.Policy{
			MinSuccessful:  cfg.Verify.MinSuccessful,
			MaxDeviationMs: cfg.Verify.MaxDeviationMs,
			MaxAge:         cfg.Verify.MaxAge(),
		}, logger),
		engine,
		sqlite.NewCertificateRepository(db),
		sqlite.NewAuditLogRepository(db),
		logger,
	)

	f, err := os.Open(path)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	if *verifyID != "" {
		hash, _, err := notary.HashReader(f)
		if err != nil {
			logger.Fatalf("hash file: %v", err)
		}
		rep, err := n.VerifyCertificate(ctx, *verifyID, hash)
		if err != nil {
			logger.Fatalf("verify: %v", err)
		}
		fmt.Print(report.RenderVerification(*verifyID, rep))
		if !rep.Overall {
			os.Exit(1)
		}
		return
	}

	rec, err := n.CertifyReader(ctx, f, model.FileDescriptor{Name: filepath.Base(path)}, nil)
	if err != nil {
		logger.Fatalf("certify: %v", err)
	}

	if *asJSON {
		out, err := report.RenderCertificateJSON(rec)
		if err != nil {
			logger.Fatalf("render certificate: %v", err)
		}
		fmt.Println(out)
		return
	}
	fmt.Print(report.RenderCertificate(rec))
}
