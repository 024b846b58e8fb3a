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
	"encoding/json"
	"strconv"
	"strings"
)

// Size is a shoe size label in canonical form. Numeric labels are kept as
// decimal integers without leading zeros ("034" becomes "34"); anything else
// is trimmed and upper-cased.
type Size string

// MinSize and MaxSize bound the size grid offered on the selection page.
const (
	MinSize = 34
	MaxSize = 44
)

// NormalizeSize returns the canonical form of a raw size label.
func NormalizeSize(label string) Size {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	if isDigits(label) {
		trimmed := strings.TrimLeft(label, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		return Size(trimmed)
	}
	return Size(strings.ToUpper(label))
}

// Number reports the integer value of a numeric size.
func (s Size) Number() (int, bool) {
	if s == "" || !isDigits(string(s)) {
		return 0, false
	}
	n, err := strconv.Atoi(string(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareSizes orders numeric sizes by value, before any non-numeric label,
// and non-numeric labels lexically.
func CompareSizes(a, b Size) int {
	an, aok := a.Number()
	bn, bok := b.Number()
	switch {
	case aok && bok:
		return compareInt(an, bn)
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// Grid returns the sizes offered on the selection page, ascending.
func Grid() []Size {
	out := make([]Size, 0, MaxSize-MinSize+1)
	for n := MinSize; n <= MaxSize; n++ {
		out = append(out, Size(strconv.Itoa(n)))
	}
	return out
}

// Label is a size label as sent by the directory. It accepts both JSON
// strings and JSON numbers and keeps the original text for display.
type Label string

// Canonical returns the normalized form used for every comparison.
func (l Label) Canonical() Size { return NormalizeSize(string(l)) }

func (l *Label) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*l = Label(n.String())
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
