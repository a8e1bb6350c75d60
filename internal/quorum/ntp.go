/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package quorum

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTPSource queries a single NTP server.
type NTPSource struct {
	Host    string
	Timeout time.Duration
}

func (s *NTPSource) Name() string { return s.Host }

// Query asks the server for its time. The context deadline caps the
// per-source timeout when it is shorter.
func (s *NTPSource) Query(ctx context.Context) (*Reading, error) {
	timeout := s.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("query %s: %w", s.Host, context.DeadlineExceeded)
	}

	resp, err := ntp.QueryWithOptions(s.Host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Host, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("query %s: invalid response: %w", s.Host, err)
	}

	return &Reading{
		Source: s.Host,
		Time:   time.Now().Add(resp.ClockOffset),
		Offset: resp.ClockOffset,
		Delay:  resp.RTT,
	}, nil
}
