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

package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInstallment(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"199.90", "70.71"},
		{"300", "106.12"},
		{"0", "0"},
	}
	for _, tc := range tests {
		got := Installment(decimal.RequireFromString(tc.price))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Installment(%s) = %s, want %s", tc.price, got, tc.want)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	f := BRL()
	tests := []struct {
		in   string
		want string
	}{
		{"199.9", "R$ 199,90"},
		{"70.7112", "R$ 70,71"},
		{"5", "R$ 5,00"},
	}
	for _, tc := range tests {
		if got := f.Format(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Errorf("Format(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
