// Package httpclient configures the HTTP client used to call upstream services.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "storefront-map/1"

type options struct {
	timeout   time.Duration
	userAgent string
}

type Option func(*options)

func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func WithUserAgent(ua string) Option { return func(o *options) { o.userAgent = ua } }

// NewOutbound creates the client used for the data portal and remote data
// sources. Requests without a User-Agent get one.
func NewOutbound(opts ...Option) *http.Client {
	o := options{timeout: 30 * time.Second, userAgent: DefaultUserAgent}
	for _, fn := range opts {
		fn(&o)
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: o.timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: &uaTransport{next: transport, ua: o.userAgent},
		Timeout:   o.timeout,
	}
}

type uaTransport struct {
	next http.RoundTripper
	ua   string
}

func (t *uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.ua == "" || r.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(r)
	}
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r)
}
