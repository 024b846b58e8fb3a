// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package directory is the client of the product directory service.
package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/calcis/storefront/src/frontend/catalog"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Client talks JSON over HTTP to the product directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the directory at addr. addr is either a host:port
// or a full base URL.
func New(addr string, opts ...Option) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProductsBySize lists the products for a size (GET /produtos?numeracao=).
// A 2xx empty array is an empty list, not an error.
func (c *Client) ProductsBySize(ctx context.Context, size catalog.Size) ([]catalog.Product, error) {
	q := url.Values{}
	q.Set("numeracao", string(size))
	body, err := c.get(ctx, "/produtos?"+q.Encode())
	if err != nil {
		return nil, err
	}
	products, skipped, err := catalog.DecodeProducts(body)
	if err != nil {
		return nil, errors.Wrapf(err, "productdirectory: list size %s", size)
	}
	for _, s := range skipped {
		c.log.WithField("index", s.Index).WithField("size", size).WithField("error", s.Err).
			Warn("skipping malformed product record")
	}
	return products, nil
}

// Product fetches one product (GET /produto/<id>). An unknown id returns
// catalog.ErrNotFound.
func (c *Client) Product(ctx context.Context, id string) (*catalog.Product, error) {
	body, err := c.get(ctx, "/produto/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	p, err := catalog.DecodeProduct(body)
	if err != nil {
		return nil, errors.Wrapf(err, "productdirectory: product %s", id)
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	op := "GET " + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "productdirectory: build request")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &catalog.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/produto/"):
		return nil, errors.Wrapf(catalog.ErrNotFound, "productdirectory: %s", op)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &catalog.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(msg)))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &catalog.NetworkError{Op: op, Err: err}
	}
	return body, nil
}
