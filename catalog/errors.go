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
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks a directory request that failed or timed out, or
	// that came back with a non-2xx status.
	ErrNetwork = errors.New("product directory unavailable")
	// ErrMalformedRecord marks a product record that cannot be used.
	ErrMalformedRecord = errors.New("malformed product record")
	// ErrNavigationStateMissing marks a catalog entry without a carried
	// dataset. It triggers a refetch and is never shown to the shopper.
	ErrNavigationStateMissing = errors.New("navigation state missing")
	// ErrNotFound marks a product id unknown to the directory.
	ErrNotFound = errors.New("product not found")
)

// NetworkError is returned by the directory client for transport failures
// and unexpected statuses. It matches ErrNetwork with errors.Is.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
