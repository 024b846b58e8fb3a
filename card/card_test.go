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

package card

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/calcis/storefront/src/frontend/catalog"
	"github.com/calcis/storefront/src/frontend/money"
)

func builder() Builder { return NewBuilder(DefaultContact(), money.BRL()) }

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func message(t *testing.T, href string) string {
	t.Helper()
	u, err := url.Parse(href)
	if err != nil {
		t.Fatal(err)
	}
	return u.Query().Get("text")
}

func TestBuildLastUnit(t *testing.T) {
	a := catalog.Product{
		ID: "A", Name: "Tênis Runner", Price: price("199.90"), OldPrice: price("249.90"),
		Variants: []catalog.Variant{{Size: "38", Stock: 1}},
	}
	vm := builder().Build(a, "38")

	if vm.Badge != BadgeLastUnit {
		t.Errorf("badge = %q, want lastUnit", vm.Badge)
	}
	if vm.PriceLabel != "R$ 199,90" || vm.OldPriceLabel != "R$ 249,90" {
		t.Errorf("prices = %q / %q", vm.PriceLabel, vm.OldPriceLabel)
	}
	if vm.InstallmentLabel != "R$ 70,71" || vm.Installments != 3 {
		t.Errorf("installment = %q x%d", vm.InstallmentLabel, vm.Installments)
	}
	if !strings.HasPrefix(vm.ContactHref, "https://wa.me/5545988190147?text=") {
		t.Errorf("href = %q", vm.ContactHref)
	}
	if got := message(t, vm.ContactHref); got != "Olá, tenho interesse no produto Tênis Runner (numeração 38)" {
		t.Errorf("message = %q", got)
	}
	if vm.ContactLabel != labelOrder {
		t.Errorf("label = %q", vm.ContactLabel)
	}
	if vm.ImageURL != PlaceholderImage {
		t.Errorf("image = %q, want placeholder", vm.ImageURL)
	}
}

func TestBuildSoldOut(t *testing.T) {
	b := catalog.Product{
		ID: "B", Name: "Bota & Cia", WhatsApp: "(11) 99999-0000",
		Variants: []catalog.Variant{{Size: "38", Stock: 0}},
	}
	vm := builder().Build(b, "38")
	if vm.Badge != BadgeSoldOut {
		t.Errorf("badge = %q, want soldOut", vm.Badge)
	}
	if !strings.HasPrefix(vm.ContactHref, "https://wa.me/5511999990000?text=") {
		t.Errorf("href = %q, want product phone override", vm.ContactHref)
	}
	if strings.Contains(vm.ContactHref, " ") || strings.Contains(vm.ContactHref, "&Cia") {
		t.Errorf("href not encoded: %q", vm.ContactHref)
	}
	if got := message(t, vm.ContactHref); !strings.Contains(got, "voltar ao estoque na numeração 38") {
		t.Errorf("message = %q, want restock template", got)
	}
	if vm.ContactLabel != labelRestock {
		t.Errorf("label = %q", vm.ContactLabel)
	}
	if vm.PriceLabel != "" || vm.InstallmentLabel != "" {
		t.Errorf("labels without price = %q / %q", vm.PriceLabel, vm.InstallmentLabel)
	}
}

func TestBuildMissingSizeIsSoldOut(t *testing.T) {
	c := catalog.Product{ID: "C", Name: "Sandália", Variants: []catalog.Variant{{Size: "38", Stock: 4}}}
	vm := builder().Build(c, "40")
	if vm.Badge != BadgeSoldOut || vm.Status != catalog.StatusSoldOut {
		t.Fatalf("badge/status = %q/%q", vm.Badge, vm.Status)
	}
}

func TestBuildUnselectedHasNoBadge(t *testing.T) {
	p := catalog.Product{ID: "D", Name: "Chinelo", Variants: []catalog.Variant{{Size: "38", Stock: 0}}}
	vm := builder().Build(p, "")
	if vm.Badge != BadgeNone {
		t.Errorf("badge = %q, want none", vm.Badge)
	}
	if got := message(t, vm.ContactHref); got != "Olá, tenho interesse no produto Chinelo" {
		t.Errorf("message = %q", got)
	}
}

func TestSizeChipsAscending(t *testing.T) {
	p := catalog.Product{ID: "E", Name: "Tênis", Variants: []catalog.Variant{
		{Size: "40", Stock: 2}, {Size: "9", Stock: 0}, {Size: "038", Stock: 1}, {Size: "36", Stock: -1},
	}}
	chips := builder().Build(p, "38").Sizes
	var labels []string
	for _, c := range chips {
		labels = append(labels, c.Label)
	}
	if strings.Join(labels, ",") != "9,36,038,40" {
		t.Fatalf("labels = %v", labels)
	}
	if chips[0].InStock || chips[1].InStock || chips[1].Stock != 0 || !chips[2].InStock || !chips[2].Selected || chips[3].Selected {
		t.Fatalf("chips = %+v", chips)
	}
}
