// Copyright 2024 Google LLC
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

package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/calcis/storefront/src/frontend/catalog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *test.Hook) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, hook := test.NewNullLogger()
	return New(srv.URL, WithHTTPClient(srv.Client()), WithLogger(log)), hook
}

func TestProductsBySize(t *testing.T) {
	var gotQuery string
	c, hook := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/produtos" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("numeracao")
		fmt.Fprint(w, `[{"id":1,"nome":"Tênis","preco":10,"variacoes":[{"numeracao":"38","estoque":2}]},{"nome":"sem id"}]`)
	})

	products, err := c.ProductsBySize(context.Background(), "38")
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "38" {
		t.Errorf("numeracao = %q, want 38", gotQuery)
	}
	if len(products) != 1 || products[0].ID != "1" {
		t.Fatalf("products = %+v", products)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Message != "skipping malformed product record" {
		t.Errorf("expected one skipped-record warning, got %d entries", len(hook.Entries))
	}
}

func TestProductsBySizeEmptyIsNotAnError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	products, err := c.ProductsBySize(context.Background(), "40")
	if err != nil {
		t.Fatal(err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("products = %v, want empty non-nil", products)
	}
}

func TestProductsBySizeServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.ProductsBySize(context.Background(), "40")
	if !errors.Is(err, catalog.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	var ne *catalog.NetworkError
	if !errors.As(err, &ne) || ne.Status != http.StatusBadGateway {
		t.Fatalf("err = %#v", err)
	}
}

func TestProductsBySizeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(addr)
	_, err := c.ProductsBySize(context.Background(), "40")
	if !errors.Is(err, catalog.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestProductsBySizeCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.ProductsBySize(ctx, "40")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, catalog.ErrNetwork) {
		t.Fatal("canceled request reported as a network error")
	}
}

func TestProduct(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/produto/7":
			fmt.Fprint(w, `{"id":"7","nome":"Bota","imagem":"/b.jpg","descricao":"couro"}`)
		case "/produto/8":
			fmt.Fprint(w, `{"id":"8"}`)
		default:
			http.NotFound(w, r)
		}
	})

	p, err := c.Product(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Bota" || p.ImageURL != "/b.jpg" || p.Description != "couro" {
		t.Errorf("product = %+v", p)
	}

	if _, err := c.Product(context.Background(), "9"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
	if _, err := c.Product(context.Background(), "8"); !errors.Is(err, catalog.ErrMalformedRecord) {
		t.Errorf("nameless product: err = %v, want ErrMalformedRecord", err)
	}
}

func TestNewAcceptsHostPort(t *testing.T) {
	if c := New("directory:4000/"); c.baseURL != "http://directory:4000" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c := New("https://api.example.com"); c.baseURL != "https://api.example.com" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
}
