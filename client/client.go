// Package client is a typed HTTP client for the rental API. It owns no
// global state: credentials live in an explicit Session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"equiprental/util/apperr"
	"equiprental/util/httpx"
)

type Client struct {
	base string
	hc   *http.Client
	now  func() time.Time

	mu   sync.Mutex
	sess *Session
}

type Option func(*Client)

// WithHTTPClient replaces the pooled client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithTimeout sets the deadline of each request, refresh and replay
// included. The default is httpx.DefaultTimeout.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.hc = httpx.New(d) } }

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// New builds a client for baseURL (scheme and host, optional prefix). A nil
// session is allowed for public calls and Login.
func New(baseURL string, s *Session, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   httpx.New(httpx.DefaultTimeout),
		now:  time.Now,
		sess: s,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns a copy of the current credentials, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	cp := *c.sess
	return &cp
}

func (c *Client) setSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		c.sess = &Session{}
	}
	if s.Refresh == "" {
		s.Refresh = c.sess.Refresh
	}
	*c.sess = s
}

// errorBody mirrors the server's error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type call struct {
	method string
	path   string
	body   any
	out    any
	auth   bool
}

// do sends the call. Authenticated calls refresh an expired access token
// first; a 401 triggers at most one refresh and one replay.
func (c *Client) do(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return apperr.Wrap(apperr.ErrValidation, err, "encode request")
		}
		payload = b
	}

	refreshed := false
	if cl.auth {
		s := c.Session()
		if !s.valid() {
			return apperr.Newf(apperr.ErrUnauthenticated, "no session")
		}
		if s.expired(c.now()) {
			if err := c.refresh(ctx); err != nil {
				return err
			}
			refreshed = true
		}
	}

	status, raw, err := c.send(ctx, cl, payload)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && cl.auth && !refreshed {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		if status, raw, err = c.send(ctx, cl, payload); err != nil {
			return err
		}
	}
	if status >= 300 {
		return statusErr(status, raw)
	}
	if cl.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if p, ok := cl.out.(pageDecoder); ok {
		err = p.decode(raw)
	} else {
		err = json.Unmarshal(raw, cl.out)
	}
	if err != nil {
		return apperr.Wrap(apperr.ErrTransient, err, "decode response")
	}
	return nil
}

func (c *Client) send(ctx context.Context, cl call, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.base+cl.path, body)
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.ErrValidation, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth {
		if s := c.Session(); s != nil {
			req.Header.Set("Authorization", "Bearer "+s.Access)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.ErrTransient, err, cl.method+" "+cl.path)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.ErrTransient, err, "read response")
	}
	return resp.StatusCode, raw, nil
}

// refresh swaps the refresh token for a new access token. Any failure
// ends the session as UNAUTHENTICATED, except network trouble which stays
// retryable.
func (c *Client) refresh(ctx context.Context) error {
	s := c.Session()
	if s == nil || s.Refresh == "" {
		return apperr.Newf(apperr.ErrUnauthenticated, "no refresh token")
	}
	var tok Session
	status, raw, err := c.send(ctx, call{
		method: http.MethodPost,
		path:   "/v1/token/refresh",
	}, mustJSON(map[string]string{"refresh": s.Refresh}))
	if err != nil {
		return err
	}
	if status >= 500 {
		return statusErr(status, raw)
	}
	if status >= 300 {
		return apperr.Wrap(apperr.ErrUnauthenticated, statusErr(status, raw), "refresh rejected")
	}
	if err := json.Unmarshal(raw, &tok); err != nil || tok.Access == "" {
		return apperr.Newf(apperr.ErrUnauthenticated, "refresh returned no token")
	}
	c.setSession(tok)
	return nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("client: marshal %T: %v", v, err))
	}
	return b
}

// statusErr maps a non-2xx answer to a coded error. Server failures are
// always TRANSIENT; otherwise the server's own code wins.
func statusErr(status int, raw []byte) error {
	var b errorBody
	_ = json.Unmarshal(raw, &b)
	detail := b.Detail
	if detail == "" {
		detail = b.Message
	}
	if status >= 500 {
		return apperr.Wrap(apperr.ErrTransient, errors.New(http.StatusText(status)), detail)
	}
	code := apperr.ErrCode(b.Code)
	if code == "" {
		switch status {
		case http.StatusUnauthorized:
			code = apperr.ErrUnauthenticated
		case http.StatusForbidden:
			code = apperr.ErrForbidden
		case http.StatusNotFound:
			code = apperr.ErrNotFound
		default:
			code = apperr.ErrValidation
		}
	}
	return apperr.Newf(code, "%s", detail)
}
