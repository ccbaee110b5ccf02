// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package egress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Route
		wantErr bool
	}{
		{name: "empty is direct", raw: "", want: Direct()},
		{name: "literal direct", raw: "DIRECT", want: Direct()},
		{name: "http with credentials", raw: "http://u:p@proxy.example:3128", want: Route{Scheme: "http", Username: "u", Password: "p", Host: "proxy.example:3128"}},
		{name: "https default port", raw: "https://proxy.example", want: Route{Scheme: "https", Host: "proxy.example:443"}},
		{name: "socks5 default port", raw: "socks5://10.0.0.1", want: Route{Scheme: "socks5", Host: "10.0.0.1:1080"}},
		{name: "socks5h upper case scheme", raw: "SOCKS5H://h:9050", want: Route{Scheme: "socks5h", Host: "h:9050"}},
		{name: "unsupported scheme", raw: "ftp://h:21", wantErr: true},
		{name: "missing host", raw: "http://", wantErr: true},
		{name: "path not allowed", raw: "http://h:80/some/path", wantErr: true},
		{name: "host is lowercased", raw: "http://Proxy.Example.COM.:8080", want: Route{Scheme: "http", Host: "proxy.example.com:8080"}},
		{name: "idn host", raw: "http://bücher.example:3128", want: Route{Scheme: "http", Host: "xn--bcher-kva.example:3128"}},
		{name: "ipv6 host", raw: "socks5://[::1]:1080", want: Route{Scheme: "socks5", Host: "[::1]:1080"}},
		{name: "zone not allowed", raw: "http://[fe80::1%25eth0]:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoute(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRoute))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoutes_SkipsDirectEntries(t *testing.T) {
	routes, err := ParseRoutes([]string{"direct", "http://a:1", ""})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "a:1", routes[0].Host)

	_, err = ParseRoutes([]string{"http://a:1", "gopher://b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route 1")
}

func TestParseRoutes_DropsRepeats(t *testing.T) {
	routes, err := ParseRoutes([]string{
		"http://u:p@proxy.example:3128",
		"http://u:p@PROXY.example:3128",
		"http://other:p@proxy.example:3128",
	})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "http://u@proxy.example:3128", routes[0].Key())
	assert.Equal(t, "http://other@proxy.example:3128", routes[1].Key())
}

func TestRoute_KeyAndRedactedHidePassword(t *testing.T) {
	r := Route{Scheme: "http", Username: "user", Password: "s3cret", Host: "h:80"}

	assert.Equal(t, "http://user@h:80", r.Key())
	assert.NotContains(t, r.Redacted(), "s3cret")
	assert.NotContains(t, r.String(), "s3cret")
	assert.Equal(t, "http://user:s3cret@h:80", r.URL().String())

	assert.Equal(t, "direct", Direct().Key())
	assert.Equal(t, "direct", Direct().Endpoint())
	assert.Equal(t, "direct", Direct().String())
	assert.Nil(t, Direct().URL())
}

func TestWebshareRoute(t *testing.T) {
	r := WebshareRoute("alice", "pw")
	assert.Equal(t, "http://alice-rotate:pw@p.webshare.io:80", r.URL().String())
	assert.False(t, r.IsDirect())
}

func TestRoute_EndpointOmitsAccount(t *testing.T) {
	r := WebshareRoute("acctuser", "secret")

	assert.Equal(t, "http://p.webshare.io:80", r.Endpoint())
	assert.NotContains(t, r.Endpoint(), "acctuser")
	assert.Contains(t, r.Key(), "acctuser", "affinity key still tells accounts apart")
}
