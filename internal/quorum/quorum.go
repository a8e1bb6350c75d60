/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package quorum obtains a trustworthy timestamp by consulting multiple
// independent time sources and agreeing on a median. A single lying or
// broken source cannot move the result, and the local system clock is
// never used as a substitute: when too few sources answer, certification
// fails instead of degrading silently.
package quorum

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aeeprotocol/aee-notary/internal/domain"
	"github.com/aeeprotocol/aee-notary/internal/domain/model"
)

// DefaultServers are the time sources consulted when none are configured.
var DefaultServers = []string{
	"time.google.com",
	"time.cloudflare.com",
	"time.nist.gov",
	"time.apple.com",
	"pool.ntp.org",
}

const (
	DefaultPerSourceTimeout = 3 * time.Second
	DefaultMaxDeviationMs   = 500.0
	DefaultMinSuccessful    = 3
)

// Reading is one answer from a time source.
type Reading struct {
	Source string
	Time   time.Time
	Offset time.Duration
	Delay  time.Duration
}

// Source is a queryable time authority.
type Source interface {
	Name() string
	Query(ctx context.Context) (*Reading, error)
}

// Config controls quorum behaviour.
type Config struct {
	Servers          []string
	PerSourceTimeout time.Duration
	OverallTimeout   time.Duration
	MaxDeviationMs   float64
	MinSuccessful    int
}

func (c *Config) applyDefaults() {
	if len(c.Servers) == 0 {
		c.Servers = DefaultServers
	}
	if c.PerSourceTimeout <= 0 {
		c.PerSourceTimeout = DefaultPerSourceTimeout
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = c.PerSourceTimeout + 2*time.Second
	}
	if c.MaxDeviationMs <= 0 {
		c.MaxDeviationMs = DefaultMaxDeviationMs
	}
	if c.MinSuccessful <= 0 {
		c.MinSuccessful = DefaultMinSuccessful
	}
}

// TimeQuorum queries its sources concurrently and derives a consensus
// timestamp.
type TimeQuorum struct {
	sources        []Source
	overallTimeout time.Duration
	maxDeviationMs float64
	minSuccessful  int
	logger         *log.Logger
}

// New builds a quorum over NTP sources. Duplicate server names are queried
// once.
func New(cfg Config, logger *log.Logger) *TimeQuorum {
	cfg.applyDefaults()

	seen := make(map[string]bool, len(cfg.Servers))
	sources := make([]Source, 0, len(cfg.Servers))
	for _, host := range cfg.Servers {
		if seen[host] {
			continue
		}
		seen[host] = true
		sources = append(sources, &NTPSource{Host: host, Timeout: cfg.PerSourceTimeout})
	}
	return NewWithSources(cfg, sources, logger)
}

// NewWithSources builds a quorum over caller-supplied sources.
func NewWithSources(cfg Config, sources []Source, logger *log.Logger) *TimeQuorum {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &TimeQuorum{
		sources:        sources,
		overallTimeout: cfg.OverallTimeout,
		maxDeviationMs: cfg.MaxDeviationMs,
		minSuccessful:  cfg.MinSuccessful,
		logger:         logger,
	}
}

// Consensus queries every source concurrently and agrees on a timestamp.
// The median of the successful readings is taken, readings further than the
// configured deviation from that median are discarded, and the median is
// recomputed over the survivors. If discarding leaves fewer readings than
// the required minimum, the unfiltered set is used instead. Fewer successful
// answers than the minimum is a hard failure wrapped in ErrQuorum.
func (q *TimeQuorum) Consensus(ctx context.Context) (*model.TimeConsensusRecord, error) {
	if len(q.sources) == 0 {
		return nil, fmt.Errorf("%w: no time sources configured", domain.ErrQuorum)
	}

	type slot struct {
		reading *Reading
		err     error
	}
	slots := make([]slot, len(q.sources))
	done := make(chan int, len(q.sources))

	queryCtx, cancel := context.WithTimeout(ctx, q.overallTimeout)
	defer cancel()

	for i, src := range q.sources {
		go func(i int, src Source) {
			r, err := src.Query(queryCtx)
			slots[i] = slot{reading: r, err: err}
			done <- i
		}(i, src)
	}

	// Collect until every source answered or the overall deadline expires.
	// Slots whose index was never received are left untouched and counted
	// as failed.
	received := make([]bool, len(q.sources))
	pending := len(q.sources)
	deadline := time.NewTimer(q.overallTimeout)
	defer deadline.Stop()
collect:
	for pending > 0 {
		select {
		case i := <-done:
			received[i] = true
			pending--
		case <-deadline.C:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	var readings []*Reading
	for i, src := range q.sources {
		if !received[i] {
			q.logger.Printf("quorum: %s: no answer before deadline", src.Name())
			continue
		}
		if slots[i].err != nil {
			q.logger.Printf("quorum: %s: %v", src.Name(), slots[i].err)
			continue
		}
		readings = append(readings, slots[i].reading)
	}

	if len(readings) < q.minSuccessful {
		return nil, fmt.Errorf("%w: %d of %d sources answered, need %d",
			domain.ErrQuorum, len(readings), len(q.sources), q.minSuccessful)
	}

	consensus := q.agree(readings)
	consensus.ServersConsulted = len(q.sources)
	consensus.ServersSuccessful = len(readings)
	return consensus, nil
}

func (q *TimeQuorum) agree(readings []*Reading) *model.TimeConsensusRecord {
	stamps := make([]float64, len(readings))
	for i, r := range readings {
		stamps[i] = unixSeconds(r.Time)
	}

	med := median(stamps)

	retained := readings
	if len(readings) >= 3 {
		var kept []*Reading
		for _, r := range readings {
			if math.Abs(unixSeconds(r.Time)-med)*1000.0 <= q.maxDeviationMs {
				kept = append(kept, r)
			}
		}
		if len(kept) >= q.minSuccessful {
			retained = kept
		} else {
			q.logger.Printf("quorum: deviation filter kept %d of %d readings, relaxing", len(kept), len(readings))
		}
	}

	retainedStamps := make([]float64, len(retained))
	for i, r := range retained {
		retainedStamps[i] = unixSeconds(r.Time)
	}
	final := median(retainedStamps)

	deviation := 0.0
	if len(retainedStamps) >= 3 {
		deviation = stat.StdDev(retainedStamps, nil) * 1000.0
	}

	// Diagnostics cover every successful reading, filtered or not, so an
	// auditor can see which source was excluded and by how much.
	details := make([]model.TimeSourceDetail, len(readings))
	for i, r := range readings {
		details[i] = model.TimeSourceDetail{
			Server:    r.Source,
			Timestamp: round2(unixSeconds(r.Time)),
			OffsetMs:  round2(float64(r.Offset) / float64(time.Millisecond)),
			DelayMs:   round2(float64(r.Delay) / float64(time.Millisecond)),
		}
	}

	sec, frac := math.Modf(final)
	return &model.TimeConsensusRecord{
		TimestampUnix:        final,
		TimestampISO:         time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC().Format(time.RFC3339Nano),
		ServersUsedConsensus: len(retained),
		DeviationMs:          round2(deviation),
		PerServerDetail:      details,
	}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}
