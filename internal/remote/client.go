// Package remote talks to the concert REST API on behalf of one console
// session.  Every call carries the session's API credentials, speaks JSON,
// and turns failures into a single user-visible notification.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/obs"
)

// TokenCookie is the cookie the API issues on login and register.
const TokenCookie = "JWT"

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

// Options describe one call.  Body is encoded as JSON unless it already is
// a []byte, json.RawMessage or string.  Headers are merged over the defaults.
// Quiet suppresses the failure notification, for background calls such as the auth
// check where a 401 is an expected answer.
type Options struct {
	Method  string
	Body    any
	Headers http.Header
	Quiet   bool
}

// Result is a successful answer.  Success is set when the body was empty or
// not JSON; Data holds the raw JSON otherwise.
type Result struct {
	Status  int
	Success bool
	Data    json.RawMessage
}

// Decode unmarshals Data into v keeping numbers as json.Number.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(r.Data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Caller is the part of Client the views depend on.
type Caller interface {
	Call(ctx context.Context, endpoint string, opts Options) (Result, error)
	Report(err error)
}

// Client is safe for concurrent use.
type Client struct {
	base     *url.URL
	http     *http.Client
	jar      http.CookieJar
	notifier notify.Notifier
	now      func() time.Time
}

// New builds a client for the API at baseURL.  Each client owns a private
// cookie jar, so one client must be created per console session.
func New(baseURL string, notifier notify.Notifier, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("remote: cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:     base,
		http:     &http.Client{Jar: jar, Timeout: timeout},
		jar:      jar,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

// Call performs one request against endpoint, a path such as
// "/api/concerts/search".  Failures are notified once and returned as
// *APIError or *TransportError.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options) (Result, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	start := c.now()
	res, err := c.do(ctx, method, endpoint, opts)
	obs.ObserveUpstream(method, endpoint, statusOf(res, err), time.Since(start))
	if err != nil {
		if !opts.Quiet {
			c.Report(err)
		}
		return Result{}, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts Options) (Result, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return Result{}, &TransportError{Op: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+endpoint, body)
	if err != nil {
		return Result{}, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range opts.Headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &TransportError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Result{Status: resp.StatusCode}, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Status: resp.StatusCode}, parseAPIError(resp.StatusCode, raw)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return Result{Status: resp.StatusCode, Success: true}, nil
	}
	return Result{Status: resp.StatusCode, Data: json.RawMessage(trimmed)}, nil
}

func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

// errorBody is the validation envelope of the API.
type errorBody struct {
	Message     string         `json:"message"`
	Error       string         `json:"error"`
	FieldErrors map[string]any `json:"fieldErrors"`
}

func parseAPIError(status int, raw []byte) *APIError {
	text := strings.TrimSpace(string(raw))
	e := &APIError{Status: status}

	var eb errorBody
	if text != "" && json.Unmarshal([]byte(text), &eb) == nil {
		e.Message = strings.TrimSpace(eb.Message)
		if e.Message == "" {
			e.Message = strings.TrimSpace(eb.Error)
		}
		if len(eb.FieldErrors) > 0 {
			e.FieldErrors = make(map[string]string, len(eb.FieldErrors))
			for k, v := range eb.FieldErrors {
				e.FieldErrors[k] = fmt.Sprint(v)
			}
		}
	} else {
		e.Message = text
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("Error %d", status)
	}
	return e
}

// Report notifies err unless it was already shown.  Errors of other
// packages are notified as they are.
func (c *Client) Report(err error) {
	if err == nil || Reported(err) {
		return
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		apiErr.reported = true
		if c.notifier != nil {
			c.notifier.Notify(notify.Error, apiErr.Message, apiErr.Detail()...)
		}
		return
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		tErr.reported = true
		if c.notifier != nil {
			c.notifier.Notify(notify.Error, "Connection problem: "+err.Error())
		}
		return
	}
	if c.notifier != nil {
		c.notifier.Notify(notify.Error, err.Error())
	}
}

func statusOf(res Result, err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return res.Status
}

// Fetch calls endpoint and decodes a JSON answer into T.  A success without
// a JSON body is reported as a decode failure.
func Fetch[T any](ctx context.Context, c Caller, endpoint string, opts Options) (T, error) {
	var out T
	res, err := c.Call(ctx, endpoint, opts)
	if err != nil {
		return out, err
	}
	if err := res.Decode(&out); err != nil {
		tErr := &TransportError{Op: "decode " + endpoint, Err: err}
		if !opts.Quiet {
			c.Report(tErr)
		}
		return out, tErr
	}
	return out, nil
}

// token returns the raw JWT cookie held for the API, if any.
func (c *Client) token() (string, bool) {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == TokenCookie && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

// HasLiveToken reports whether the jar holds a token that has not expired
// yet.  The signature is not verified: the API remains the authority, this
// only avoids a round trip with a token that is certainly stale.  Tokens
// that cannot be parsed are assumed live.
func (c *Client) HasLiveToken() bool {
	raw, ok := c.token()
	if !ok {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return c.now().Before(exp.Time)
}

// Logout forgets the API token by overwriting the cookie with an already
// expired one.
func (c *Client) Logout() {
	c.jar.SetCookies(c.base, []*http.Cookie{{
		Name:    TokenCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	}})
}
