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

// Status is the stock state of a product at the selected size.
type Status string

const (
	StatusUnselected Status = "unselected"
	StatusAvailable  Status = "available"
	StatusLastUnit   Status = "lastUnit"
	StatusSoldOut    Status = "soldOut"
)

// StockState is the result of resolving a product against a size. Variant is
// nil when no variant matches.
type StockState struct {
	Status  Status
	Variant *Variant
}

// Orderable reports whether the shopper can still ask for the product.
func (s StockState) Orderable() bool {
	return s.Status == StatusAvailable || s.Status == StatusLastUnit
}

// Resolve maps a product and a raw size label to its stock state. An empty
// label resolves to StatusUnselected. A missing variant is the same as a
// variant with no stock.
func Resolve(p Product, label string) StockState {
	size := NormalizeSize(label)
	if size == "" {
		return StockState{Status: StatusUnselected}
	}
	v, ok := p.Variant(size)
	if !ok {
		return StockState{Status: StatusSoldOut}
	}
	st := StockState{Variant: &v}
	switch {
	case v.Stock <= 0:
		st.Status = StatusSoldOut
	case v.Stock == 1:
		st.Status = StatusLastUnit
	default:
		st.Status = StatusAvailable
	}
	return st
}
