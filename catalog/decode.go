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

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SkippedRecord describes a product record dropped while decoding a list.
type SkippedRecord struct {
	Index int
	Err   error
}

// DecodeProduct decodes and checks a single product record. Records without
// an id or a name fail with ErrMalformedRecord. Repeated sizes keep their
// first occurrence.
func DecodeProduct(raw []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.ID == "":
		return Product{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	case p.Name == "":
		return Product{}, fmt.Errorf("%w: product %s missing nome", ErrMalformedRecord, p.ID)
	}
	p.Variants = dedupeVariants(p.Variants)
	return p, nil
}

// DecodeProducts decodes a JSON array of product records. Malformed records
// are skipped and reported; they never fail the whole list. A JSON null is an
// empty list.
func DecodeProducts(data []byte) ([]Product, []SkippedRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Product{}, nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("%w: product list: %v", ErrMalformedRecord, err)
	}
	products := make([]Product, 0, len(raws))
	var skipped []SkippedRecord
	for i, raw := range raws {
		p, err := DecodeProduct(raw)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, Err: err})
			continue
		}
		products = append(products, p)
	}
	return products, skipped, nil
}

func dedupeVariants(in []Variant) []Variant {
	if len(in) < 2 {
		return in
	}
	seen := make(map[Size]bool, len(in))
	out := in[:0:0]
	for _, v := range in {
		s := v.Size.Canonical()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, v)
	}
	return out
}
