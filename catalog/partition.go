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
	"hash/fnv"
	"math/rand/v2"
)

// Availability is a product list split for one size. Both lists keep the
// input order.
type Availability struct {
	Available []Product
	SoldOut   []Product
}

// Partition splits products into available and sold-out sets for a size
// label. With an empty label a product is available when any of its sizes
// has stock.
func Partition(products []Product, label string) Availability {
	out := Availability{
		Available: make([]Product, 0, len(products)),
		SoldOut:   make([]Product, 0),
	}
	selected := NormalizeSize(label) != ""
	for _, p := range products {
		var ok bool
		if selected {
			ok = Resolve(p, label).Orderable()
		} else {
			ok = p.InStock()
		}
		if ok {
			out.Available = append(out.Available, p)
		} else {
			out.SoldOut = append(out.SoldOut, p)
		}
	}
	return out
}

// Shuffle returns a permutation of products. The order depends only on seed,
// so keying it on a dataset id gives one stable order per fetched dataset.
// The input slice is not modified.
func Shuffle(products []Product, seed string) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	h := fnv.New64a()
	h.Write([]byte(seed))
	s := h.Sum64()
	r := rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
