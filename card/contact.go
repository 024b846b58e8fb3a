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
	"fmt"
	"net/url"
	"strings"

	"github.com/calcis/storefront/src/frontend/catalog"
)

const (
	DefaultCountryCode = "55"
	DefaultPhone       = "45988190147"

	labelOrder   = "Pedir via WhatsApp"
	labelRestock = "Avise-me quando chegar"
)

// Contact addresses the shop's messaging deep links.
type Contact struct {
	CountryCode  string
	DefaultPhone string
}

// DefaultContact is the shop-wide WhatsApp contact.
func DefaultContact() Contact {
	return Contact{CountryCode: DefaultCountryCode, DefaultPhone: DefaultPhone}
}

// Link returns the wa.me deep link and button label for p. A product's own
// number overrides the shop default. Sold-out products get the restock
// notice message instead of the interest message.
func (c Contact) Link(p catalog.Product, label string, status catalog.Status) (href, text string) {
	phone := digits(p.WhatsApp)
	if phone == "" {
		phone = digits(c.DefaultPhone)
	}
	size := strings.TrimSpace(label)

	var msg string
	switch {
	case status == catalog.StatusSoldOut:
		msg = fmt.Sprintf("Olá, gostaria de ser avisado quando o produto %s voltar ao estoque na numeração %s", p.Name, size)
		text = labelRestock
	case size != "":
		msg = fmt.Sprintf("Olá, tenho interesse no produto %s (numeração %s)", p.Name, size)
		text = labelOrder
	default:
		msg = fmt.Sprintf("Olá, tenho interesse no produto %s", p.Name)
		text = labelOrder
	}
	href = "https://wa.me/" + digits(c.CountryCode) + phone + "?text=" + escape(msg)
	return href, text
}

// escape percent-encodes s for a query value, spaces included.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
