// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package egress

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/proxy"

	"github.com/ManuGH/transcriptd/internal/platform/httpx"
)

// ClientFactory hands out one HTTP client per route. Clients are cached so
// that keep-alive connections are reused and consecutive calls of one request
// leave through the same exit address.
type ClientFactory struct {
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewClientFactory returns a factory whose clients use timeout per call.
func NewClientFactory(timeout time.Duration) *ClientFactory {
	return &ClientFactory{
		timeout: timeout,
		clients: make(map[string]*http.Client),
	}
}

// Client returns the client bound to route.
func (f *ClientFactory) Client(route Route) (*http.Client, error) {
	// Keyed on the full proxy URL, password included, so rotated credentials
	// never reuse connections opened with the old ones.
	cacheKey := directKey
	if u := route.URL(); u != nil {
		cacheKey = u.String()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[cacheKey]; ok {
		return c, nil
	}

	tr, err := f.transport(route)
	if err != nil {
		return nil, err
	}
	c := httpx.NewClient(f.timeout, otelhttp.NewTransport(tr))
	f.clients[cacheKey] = c
	return c, nil
}

// CloseIdleConnections drops pooled connections of every client.
func (f *ClientFactory) CloseIdleConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		c.CloseIdleConnections()
	}
}

func (f *ClientFactory) transport(route Route) (*http.Transport, error) {
	opts := httpx.TransportOptions{Timeout: f.timeout}
	switch route.Scheme {
	case "":
	case "http", "https":
		opts.ProxyURL = route.URL()
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if route.Username != "" {
			auth = &proxy.Auth{User: route.Username, Password: route.Password}
		}
		dialer, err := proxy.SOCKS5("tcp", route.Host, auth, &net.Dialer{Timeout: f.timeout})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}
		ctxDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("%w: socks dialer lacks context support", ErrInvalidRoute)
		}
		opts.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return ctxDialer.DialContext(ctx, network, addr)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRoute, route.Scheme)
	}
	return httpx.NewTransport(opts), nil
}
