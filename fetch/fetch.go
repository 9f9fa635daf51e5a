// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// userAgent mimics a desktop browser; the upstream serves a different
// (broken) page layout to clients it identifies as bots.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// ErrTimeout indicates the request exceeded its deadline.
var ErrTimeout = errors.New("fetch: request timed out")

// ErrNetwork indicates a transport-level failure before any HTTP status
// was received.
var ErrNetwork = errors.New("fetch: network error")

// StatusError is returned when the upstream answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned status %d", e.URL, e.StatusCode)
}

// Client performs single-shot HTTP GETs against the upstream site. It owns
// a pooled transport and a rate limiter but deliberately has no retry
// policy: the upstream occasionally returns non-200 while healthy
// elsewhere, so retry is layered by each caller with its own semantics.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// New returns a Client throttled to requestsPerMinute with the given
// per-call timeout.
func New(timeout time.Duration, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}

	return &Client{
		resty:   resty.New().SetHeader("User-Agent", userAgent),
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/61.0), 1),
		timeout: timeout,
	}
}

// Text performs a GET and returns the decoded response body. Exactly one
// log line is emitted per request.
func (client *Client) Text(ctx context.Context, url string) (string, error) {
	body, err := client.Bytes(ctx, url)
	return string(body), err
}

// Bytes is Text without the string conversion; used for PDF downloads.
func (client *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNetwork, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.resty.R().SetContext(reqCtx).Get(url)
	elapsed := time.Since(start)

	if err != nil {
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, os.ErrDeadlineExceeded):
			log.Warn().Str("URL", url).Dur("Elapsed", elapsed).Msg("request timed out")
			return nil, fmt.Errorf("%w: %s", ErrTimeout, url)
		default:
			log.Warn().Err(err).Str("URL", url).Msg("request failed")
			return nil, fmt.Errorf("%w: %s", ErrNetwork, err)
		}
	}

	if resp.StatusCode() != 200 {
		log.Warn().Str("URL", url).Int("StatusCode", resp.StatusCode()).Msg("unexpected status")
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}

	log.Debug().Str("URL", url).Int("Bytes", len(resp.Body())).Dur("Elapsed", elapsed).Msg("fetched")
	return resp.Body(), nil
}
