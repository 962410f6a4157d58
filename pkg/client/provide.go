/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"net/http"
	"strings"

	"github.com/voedger/odata/pkg/retrier"
	"github.com/voedger/odata/pkg/tracker"
)

// New creates a context for the service with the given root URL, e.g. http://localhost:8080/odata
func New(serviceRoot string, opts ...Option) *Context {
	c := &Context{
		serviceRoot: strings.TrimSuffix(serviceRoot, "/") + "/",
		tracker:     tracker.New(),
		codec:       jsonCodec{},
		useETags:    true,
		header:      http.Header{},
		httpClient:  http.DefaultClient,
		retry: retrier.Config{
			InitialDelay: DefaultRetryInitialDelay,
			MaxDelay:     DefaultRetryMaxDelay,
			Multiplier:   retrier.DefaultMultiplier,
			JitterFactor: retrier.DefaultJitterFactor,
			MaxAttempts:  DefaultRetryMaxAttempts,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(c.httpClient, c.retry)
	}
	return c
}

// WithTransport replaces the HTTP transport. WithHTTPClient and WithRetry are ignored then
func WithTransport(transport ITransport) Option {
	return func(c *Context) {
		c.transport = transport
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Context) {
		c.httpClient = client
	}
}

// WithRetry sets the policy of retries on 503 Service Unavailable
func WithRetry(cfg retrier.Config) Option {
	return func(c *Context) {
		c.retry = cfg
	}
}

func WithCodec(codec IPayloadCodec) Option {
	return func(c *Context) {
		c.codec = codec
	}
}

// WithUseETags false -> cached concurrency tokens are not sent automatically
func WithUseETags(useETags bool) Option {
	return func(c *Context) {
		c.useETags = useETags
	}
}

func WithResponsePreference(preference ResponsePreference) Option {
	return func(c *Context) {
		c.preference = preference
	}
}

// WithHeader adds the header to every request
func WithHeader(name, value string) Option {
	return func(c *Context) {
		c.header.Add(name, value)
	}
}
