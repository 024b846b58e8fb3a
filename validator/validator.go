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

package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Payload is implemented by every form payload accepted by the frontend.
type Payload interface {
	Validate() error
}

// IdentityPayload is the name/phone pair captured on the welcome page.
type IdentityPayload struct {
	Name  string `validate:"required,min=2,max=80"`
	Phone string `validate:"required,min=8,max=20"`
}

// SizePayload is a size chosen on the selection page.
type SizePayload struct {
	Size string `validate:"required,alphanum,max=8"`
}

// PlaybackPayload is a position report from the overlay video player, in
// seconds.
type PlaybackPayload struct {
	Position float64 `validate:"gte=0"`
	Duration float64 `validate:"gte=0"`
}

func (p *IdentityPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	return validate.Struct(p)
}

func (p *SizePayload) Validate() error {
	p.Size = strings.TrimSpace(p.Size)
	return validate.Struct(p)
}

func (p *PlaybackPayload) Validate() error {
	return validate.Struct(p)
}

// Check validates p and returns the user-facing error, if any.
func Check(p Payload) error {
	if err := p.Validate(); err != nil {
		return ValidationErrorResponse(err)
	}
	return nil
}

// ValidationErrorResponse turns validator errors into a single user-facing
// error listing every failing field.
func ValidationErrorResponse(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must have at least %s characters", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must have at most %s characters", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid (%s)", e.Field(), e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
