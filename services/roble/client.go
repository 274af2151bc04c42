package roblesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Request is an HTTP call kept as plain bytes so it can be reissued unchanged.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewHTTPClient returns the client shared by the auth and database endpoints.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func jsonRequest(method, url string, payload interface{}) (Request, error) {
	req := Request{Method: method, URL: url, Header: make(http.Header)}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return Request{}, errors.Wrap(err, "encoding request body")
		}
		req.Body = body
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs req once, adding a bearer header when token is set.
func send(ctx context.Context, client *http.Client, req Request, token string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	for key, vals := range req.Header {
		for _, val := range vals {
			httpReq.Header.Add(key, val)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s response", req.Method, req.URL)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
