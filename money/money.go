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

// Package money holds price arithmetic and locale formatting for the shop.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Installments is the number of card installments advertised on a product.
const Installments = 3

// installmentRate is the card fee applied before splitting into installments.
var installmentRate = decimal.RequireFromString("1.0612")

// Installment returns the value of one installment for price, rounded to
// cents: price * 1.0612 / 3.
func Installment(price decimal.Decimal) decimal.Decimal {
	return price.Mul(installmentRate).Div(decimal.NewFromInt(Installments)).Round(2)
}

// Formatter renders amounts for one locale and currency symbol.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a Formatter for the given locale and symbol.
func NewFormatter(tag language.Tag, symbol string) Formatter {
	return Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// BRL formats Brazilian reais, e.g. "R$ 199,90".
func BRL() Formatter { return NewFormatter(language.BrazilianPortuguese, "R$") }

// Format renders d with two fraction digits and the locale's separators.
func (f Formatter) Format(d decimal.Decimal) string {
	amount := f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
	if f.symbol == "" {
		return amount
	}
	return f.symbol + " " + amount
}
