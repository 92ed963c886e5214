// Package httpx builds the outbound HTTP clients of the API client.
package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds one request. A refresh followed by a replay is
// three requests, each with its own deadline.
const DefaultTimeout = 10 * time.Second

var transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout: 5 * time.Second,
	MaxIdleConns:        100,
	MaxConnsPerHost:     100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// New returns a client on the shared pooled transport. A non-positive
// timeout means DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
