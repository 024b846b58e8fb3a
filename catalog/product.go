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

// Package catalog defines the product model served by the product directory
// and the size-scoped availability rules applied to it.
package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a product. The directory emits it either as a JSON string or
// as a JSON number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var l Label
	if err := l.UnmarshalJSON(b); err != nil {
		return err
	}
	*id = ID(strings.TrimSpace(string(l)))
	return nil
}

// Variant is the stock of one product at one size.
type Variant struct {
	Size  Label `json:"numeracao"`
	Stock int   `json:"estoque"`
}

// Product represents a product in the directory.
type Product struct {
	ID          ID                  `json:"id"`
	Name        string              `json:"nome"`
	Description string              `json:"descricao,omitempty"`
	Price       decimal.NullDecimal `json:"preco"`
	OldPrice    decimal.NullDecimal `json:"precoAntigo"`
	ImageURL    string              `json:"imagemUrl,omitempty"`
	GifURL      string              `json:"gifUrl,omitempty"`
	VideoURL    string              `json:"videoUrl,omitempty"`
	WhatsApp    string              `json:"whatsapp,omitempty"`
	Variants    []Variant           `json:"variacoes"`
}

// UnmarshalJSON accepts the legacy "imagem" field used by the single product
// endpoint as a fallback for "imagemUrl". Empty or null prices are absent.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var w struct {
		plain
		Price    json.RawMessage `json:"preco"`
		OldPrice json.RawMessage `json:"precoAntigo"`
		Image    string          `json:"imagem"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Product(w.plain)
	var err error
	if p.Price, err = parsePrice(w.Price); err != nil {
		return err
	}
	if p.OldPrice, err = parsePrice(w.OldPrice); err != nil {
		return err
	}
	if p.ImageURL == "" {
		p.ImageURL = w.Image
	}
	return nil
}

// parsePrice reads a price given as a JSON number or numeric string.
func parsePrice(raw json.RawMessage) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` {
		return decimal.NullDecimal{}, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.NullDecimal{}, err
		}
		if s = strings.TrimSpace(str); s == "" {
			return decimal.NullDecimal{}, nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// HasPreview reports whether the product carries a preview video.
func (p Product) HasPreview() bool { return strings.TrimSpace(p.VideoURL) != "" }

// InStock reports whether any size of the product has stock.
func (p Product) InStock() bool {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}

// Variant returns the variant for the given size, if any.
func (p Product) Variant(size Size) (Variant, bool) {
	if size == "" {
		return Variant{}, false
	}
	for _, v := range p.Variants {
		if v.Size.Canonical() == size {
			return v, true
		}
	}
	return Variant{}, false
}

// Dataset is one fetched product list, scoped to a size. ID is unique per
// fetch and is what derived orderings are keyed on.
type Dataset struct {
	ID        string    `json:"id"`
	Size      Size      `json:"size"`
	Products  []Product `json:"products"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Empty reports whether the dataset holds no products.
func (d *Dataset) Empty() bool { return d == nil || len(d.Products) == 0 }
