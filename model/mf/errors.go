// Copyright 2025 reco Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mf

import (
	"fmt"

	"github.com/juju/errors"
)

var (
	// ErrInvalidConfig reports a configuration rejected before any work
	// begins: non-positive factor count, batch size or top-N, negative epoch
	// count, or an empty user set.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrIndexOutOfRange reports a row index outside the factor matrices.
	// Rows are never silently clamped.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownUser reports a user id absent from the trained model.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownItem reports an item id absent from the trained model.
	ErrUnknownItem = errors.New("unknown item")
	// ErrDimensionMismatch reports a vector or matrix whose width disagrees
	// with the number of factors, or mismatched argument lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// FatalTrainingError aborts a fit when a non-finite error or gradient shows
// up. It carries the epoch and batch at which training diverged and is never
// retried automatically.
type FatalTrainingError struct {
	Epoch int
	Batch int
	Err   error
}

func (e *FatalTrainingError) Error() string {
	return fmt.Sprintf("fatal training error at epoch %d batch %d: %v", e.Epoch, e.Batch, e.Err)
}

func (e *FatalTrainingError) Unwrap() error {
	return e.Err
}
