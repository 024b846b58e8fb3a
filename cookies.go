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

package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/calcis/storefront/src/frontend/catalog"
)

// shopper is the identity captured on the welcome page. It lives only in
// the browser's cookie.
type shopper struct {
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
}

// currentShopper reads the identity cookie. A missing or corrupt cookie
// yields ok == false.
func currentShopper(r *http.Request) (s shopper, ok bool) {
	c, err := r.Cookie(cookieUser)
	if err != nil {
		return shopper{}, false
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return shopper{}, false
	}
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s.Name) == "" {
		return shopper{}, false
	}
	return s, true
}

func setShopper(w http.ResponseWriter, s shopper) {
	b, _ := json.Marshal(s)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieUser,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		MaxAge:   cookieMaxAge,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

// lastSize returns the last chosen size, or "" when none was stored.
func lastSize(r *http.Request) catalog.Size {
	c, err := r.Cookie(cookieSize)
	if err != nil {
		return ""
	}
	return catalog.NormalizeSize(c.Value)
}

func setLastSize(w http.ResponseWriter, size catalog.Size) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSize,
		Value:    string(size),
		MaxAge:   cookieMaxAge,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func handoffToken(r *http.Request) string {
	c, err := r.Cookie(cookieHandoff)
	if err != nil {
		return ""
	}
	return c.Value
}

func setHandoffToken(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieHandoff,
		Value:    token,
		MaxAge:   int(ttl / time.Second),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearHandoffToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   cookieHandoff,
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})
}
