// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package httpx builds the hardened HTTP transports used for outbound calls.
package httpx

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultClientTimeout         = 30 * time.Second
	defaultDialTimeout           = 10 * time.Second
	defaultResponseHeaderTimeout = 15 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 16
	defaultMaxIdleConnsPerHost   = 4
)

// DialContextFunc matches net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// TransportOptions customise NewTransport. The zero value dials directly and
// ignores proxy environment variables.
type TransportOptions struct {
	// Timeout caps the dial, TLS handshake and response header phases.
	Timeout time.Duration
	// ProxyURL routes requests through an HTTP(S) proxy.
	ProxyURL *url.URL
	// DialContext replaces the default dialer (e.g. a SOCKS5 dialer).
	DialContext DialContextFunc
}

// NewTransport returns a transport with bounded timeouts and connection pools.
func NewTransport(opts TransportOptions) *http.Transport {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	dialTimeout := timeout
	if dialTimeout > defaultDialTimeout {
		dialTimeout = defaultDialTimeout
	}

	responseHeaderTimeout := timeout
	if responseHeaderTimeout > defaultResponseHeaderTimeout {
		responseHeaderTimeout = defaultResponseHeaderTimeout
	}

	dial := opts.DialContext
	if dial == nil {
		dial = (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext
	}

	tr := &http.Transport{
		DialContext:           dial,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if opts.ProxyURL != nil {
		tr.Proxy = http.ProxyURL(opts.ProxyURL)
	}
	return tr
}

// NewClient wraps rt in a client with an overall timeout.
func NewClient(timeout time.Duration, rt http.RoundTripper) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	if rt == nil {
		rt = NewTransport(TransportOptions{Timeout: timeout})
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}
