// Package httpconn implements an HTTP connector. Grounded on the
// teacher's handleRequest loop in crawler.go: build the URL, apply the
// connector's configured headers, run the authenticator (which may
// overwrite them), issue the request.
package httpconn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/authenticator"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
)

// Doer is satisfied by *http.Client; a narrower interface than the
// teacher's HTTPClient only in name.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Connector struct {
	connector.Base
	Method  string
	Headers map[string]string
	Auth    authenticator.Authenticator
	Client  Doer

	lastHeader http.Header
}

func New(method, pathTemplate string, doc document.Document, headers map[string]string, auth authenticator.Authenticator) *Connector {
	if auth == nil {
		auth = authenticator.None{}
	}
	return &Connector{
		Base:    connector.NewBase(pathTemplate, doc),
		Method:  method,
		Headers: headers,
		Auth:    auth,
		Client:  http.DefaultClient,
	}
}

func (c *Connector) Clone() connector.Connector {
	return &Connector{
		Base:    connector.NewBase(c.PathTemplate, c.Doc),
		Method:  c.Method,
		Headers: c.Headers,
		Auth:    c.Auth,
		Client:  c.Client,
	}
}

func (c *Connector) do(ctx context.Context, body []byte) (*http.Response, error) {
	path, err := c.Path()
	if err != nil {
		return nil, err
	}
	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, c.Method, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("httpconn: %w", err)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	if err := c.Auth.PrepareRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("httpconn: authentication: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpconn: %w", err)
	}
	c.lastHeader = resp.Header
	return resp, nil
}

// ResponseHeader implements counter.HeaderSource.
func (c *Connector) ResponseHeader(name string) string {
	if c.lastHeader == nil {
		return ""
	}
	return c.lastHeader.Get(name)
}

func (c *Connector) Len(ctx context.Context) (int, bool, error) {
	resp, err := c.do(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, false, nil
	}
	return int(resp.ContentLength), true, nil
}

func (c *Connector) Fetch(ctx context.Context) ([]record.Envelope, error) {
	resp, err := c.do(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpconn: %s returned status %s", c.Method, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpconn: %w", err)
	}
	return c.Doc.Read(data)
}

func (c *Connector) Send(ctx context.Context, dataset []record.Envelope) error {
	framed, err := connector.Framing(c.Doc, nil, dataset)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, framed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("httpconn: %s returned status %s", c.Method, resp.Status)
	}
	return nil
}

func (c *Connector) Erase(ctx context.Context) error {
	del := *c
	del.Method = http.MethodDelete
	resp, err := del.do(ctx, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
