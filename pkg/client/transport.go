/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/retrier"
)

// NewHTTPTransport returns transport which retries requests replied with 503 according to retryCfg
// The last 503 response is returned as is when attempts are exhausted. Zero delays and multiplier are defaulted
func NewHTTPTransport(client *http.Client, retryCfg retrier.Config) ITransport {
	if retryCfg.InitialDelay <= 0 {
		retryCfg.InitialDelay = DefaultRetryInitialDelay
	}
	if retryCfg.MaxDelay < retryCfg.InitialDelay {
		retryCfg.MaxDelay = max(DefaultRetryMaxDelay, retryCfg.InitialDelay)
	}
	if retryCfg.Multiplier < 1 {
		retryCfg.Multiplier = retrier.DefaultMultiplier
	}
	retryCfg.RetryOnlyOn = []error{ErrServiceUnavailable}
	if retryCfg.OnError == nil {
		retryCfg.OnError = func(attempt int, delay time.Duration, err error) {
			logger.Verbose(fmt.Sprintf("attempt %d: %s, next attempt in %s", attempt, err, delay))
		}
	}
	return &httpTransport{client: client, retry: retryCfg}
}

func (t *httpTransport) Do(ctx context.Context, req *batch.Request) (*batch.Response, error) {
	resp, err := retrier.Retry(ctx, t.retry, func() (*batch.Response, error) {
		return t.send(ctx, req)
	})
	if errors.Is(err, ErrServiceUnavailable) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

func (t *httpTransport) send(ctx context.Context, req *batch.Request) (*batch.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for name, values := range req.Header {
		httpReq.Header[name] = values
	}
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	resp := &batch.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return resp, &serviceUnavailableError{retryAfter: retryAfter(httpResp.Header)}
	}
	return resp, nil
}

// only delay-seconds form of Retry-After is supported
func retryAfter(header http.Header) time.Duration {
	seconds, err := strconv.Atoi(header.Get(coreutils.RetryAfter))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
