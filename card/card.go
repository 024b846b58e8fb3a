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

// Package card derives the display fields of a product card for the
// selected size.
package card

import (
	"sort"

	"github.com/calcis/storefront/src/frontend/catalog"
	"github.com/calcis/storefront/src/frontend/money"
)

// PlaceholderImage is shown for products without an image.
const PlaceholderImage = "/static/placeholder.svg"

// Badge is the stock marker drawn on a card.
type Badge string

const (
	BadgeNone     Badge = "none"
	BadgeLastUnit Badge = "lastUnit"
	BadgeSoldOut  Badge = "soldOut"
)

// SizeChip is one size of a product, as listed on its card.
type SizeChip struct {
	Label    string
	Stock    int
	InStock  bool
	Selected bool
}

// ViewModel holds every display-ready field of a product card.
type ViewModel struct {
	ID               string
	Title            string
	Description      string
	ImageURL         string
	GifURL           string
	VideoURL         string
	HasPreview       bool
	PriceLabel       string
	OldPriceLabel    string
	InstallmentLabel string
	Installments     int
	Status           catalog.Status
	Badge            Badge
	ContactHref      string
	ContactLabel     string
	Sizes            []SizeChip
}

// Builder builds view models with the shop's contact defaults and price
// formatting.
type Builder struct {
	contact Contact
	format  money.Formatter
}

// NewBuilder returns a Builder.
func NewBuilder(contact Contact, format money.Formatter) Builder {
	return Builder{contact: contact, format: format}
}

// Build derives the card of p for the raw size label. An empty label yields
// no badge.
func (b Builder) Build(p catalog.Product, label string) ViewModel {
	st := catalog.Resolve(p, label)
	vm := ViewModel{
		ID:          string(p.ID),
		Title:       p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		GifURL:      p.GifURL,
		VideoURL:    p.VideoURL,
		HasPreview:  p.HasPreview(),
		Status:      st.Status,
		Badge:       badgeFor(st.Status),
		Sizes:       sizeChips(p, catalog.NormalizeSize(label)),
	}
	if vm.ImageURL == "" {
		vm.ImageURL = PlaceholderImage
	}
	if p.Price.Valid {
		vm.PriceLabel = b.format.Format(p.Price.Decimal)
		vm.InstallmentLabel = b.format.Format(money.Installment(p.Price.Decimal))
		vm.Installments = money.Installments
	}
	if p.OldPrice.Valid {
		vm.OldPriceLabel = b.format.Format(p.OldPrice.Decimal)
	}
	vm.ContactHref, vm.ContactLabel = b.contact.Link(p, label, st.Status)
	return vm
}

// BuildAll builds the cards of products, in order.
func (b Builder) BuildAll(products []catalog.Product, label string) []ViewModel {
	out := make([]ViewModel, len(products))
	for i, p := range products {
		out[i] = b.Build(p, label)
	}
	return out
}

// badgeFor maps a stock state to its badge. A sold-out state always wins,
// and no badge is shown before a size is chosen.
func badgeFor(s catalog.Status) Badge {
	switch s {
	case catalog.StatusSoldOut:
		return BadgeSoldOut
	case catalog.StatusLastUnit:
		return BadgeLastUnit
	}
	return BadgeNone
}

// sizeChips lists the sizes of p in ascending numeric order, keeping the
// original labels.
func sizeChips(p catalog.Product, selected catalog.Size) []SizeChip {
	chips := make([]SizeChip, 0, len(p.Variants))
	keys := make([]catalog.Size, 0, len(p.Variants))
	for _, v := range p.Variants {
		s := v.Size.Canonical()
		chips = append(chips, SizeChip{
			Label:    string(v.Size),
			Stock:    max(v.Stock, 0),
			InStock:  v.Stock > 0,
			Selected: selected != "" && s == selected,
		})
		keys = append(keys, s)
	}
	idx := make([]int, len(chips))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return catalog.CompareSizes(keys[idx[i]], keys[idx[j]]) < 0 })
	out := make([]SizeChip, len(chips))
	for i, k := range idx {
		out[i] = chips[k]
	}
	return out
}
