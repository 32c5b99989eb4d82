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
	"github.com/juju/errors"

	"github.com/reco-io/reco/base"
	"github.com/reco-io/reco/base/floats"
)

// FactorKind selects one of the two factor matrices of a FactorStore.
type FactorKind int

const (
	// UserFactors selects the m x d user matrix (p_u).
	UserFactors FactorKind = iota
	// ItemFactors selects the n x d item matrix (q_i).
	ItemFactors
)

func (kind FactorKind) String() string {
	switch kind {
	case UserFactors:
		return "user"
	case ItemFactors:
		return "item"
	default:
		return "unknown"
	}
}

// FactorStore owns the user and item latent factor matrices. Row counts and
// the factor dimension are fixed at construction; values mutate only through
// ScatterAdd, so a single writer owns all parameter updates.
type FactorStore struct {
	userFactor [][]float32 // p_u
	itemFactor [][]float32 // q_i
	nFactors   int
}

// NewFactorStore creates a store with both matrices filled by independent
// draws from a zero-mean unit-variance normal distribution, deterministic for
// a given seed.
func NewFactorStore(numUsers, numItems, nFactors int, seed int64) (*FactorStore, error) {
	if numUsers <= 0 || numItems <= 0 || nFactors <= 0 {
		return nil, errors.Annotatef(ErrInvalidConfig,
			"numUsers = %d, numItems = %d, nFactors = %d", numUsers, numItems, nFactors)
	}
	rng := base.NewRandomGenerator(seed)
	return &FactorStore{
		userFactor: rng.NormalMatrix(numUsers, nFactors, 0, 1),
		itemFactor: rng.NormalMatrix(numItems, nFactors, 0, 1),
		nFactors:   nFactors,
	}, nil
}

// NewFactorStoreFromMatrices creates a store from pretrained factors. Both
// matrices are copied, so later updates never touch the caller's slices.
func NewFactorStoreFromMatrices(userFactor, itemFactor [][]float32) (*FactorStore, error) {
	if len(userFactor) == 0 || len(itemFactor) == 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "empty factor matrix")
	}
	nFactors := len(userFactor[0])
	if nFactors == 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "zero factor dimension")
	}
	store := &FactorStore{
		userFactor: make([][]float32, len(userFactor)),
		itemFactor: make([][]float32, len(itemFactor)),
		nFactors:   nFactors,
	}
	for i, row := range userFactor {
		if len(row) != nFactors {
			return nil, errors.Annotatef(ErrDimensionMismatch,
				"user row %d has width %d, expected %d", i, len(row), nFactors)
		}
		store.userFactor[i] = append([]float32(nil), row...)
	}
	for i, row := range itemFactor {
		if len(row) != nFactors {
			return nil, errors.Annotatef(ErrDimensionMismatch,
				"item row %d has width %d, expected %d", i, len(row), nFactors)
		}
		store.itemFactor[i] = append([]float32(nil), row...)
	}
	return store, nil
}

// NumUsers returns the number of user rows.
func (store *FactorStore) NumUsers() int {
	return len(store.userFactor)
}

// NumItems returns the number of item rows.
func (store *FactorStore) NumItems() int {
	return len(store.itemFactor)
}

// NFactors returns the factor dimension d.
func (store *FactorStore) NFactors() int {
	return store.nFactors
}

// UserFactor returns the latent factor of a user row. The returned slice
// aliases the store and must be treated as read-only.
func (store *FactorStore) UserFactor(row int32) []float32 {
	return store.userFactor[row]
}

// ItemFactor returns the latent factor of an item row. The returned slice
// aliases the store and must be treated as read-only.
func (store *FactorStore) ItemFactor(row int32) []float32 {
	return store.itemFactor[row]
}

func (store *FactorStore) matrix(kind FactorKind) ([][]float32, error) {
	switch kind {
	case UserFactors:
		return store.userFactor, nil
	case ItemFactors:
		return store.itemFactor, nil
	default:
		return nil, errors.Annotatef(ErrInvalidConfig, "factor kind %d", kind)
	}
}

// Gather returns the factor rows for the given row indices, in the given
// order. Duplicate indices return duplicate rows. The returned rows alias the
// store and must be treated as read-only.
func (store *FactorStore) Gather(kind FactorKind, rows []int32) ([][]float32, error) {
	matrix, err := store.matrix(kind)
	if err != nil {
		return nil, errors.Trace(err)
	}
	gathered := make([][]float32, len(rows))
	for i, row := range rows {
		if row < 0 || int(row) >= len(matrix) {
			return nil, errors.Annotatef(ErrIndexOutOfRange,
				"%v row %d not in [0, %d)", kind, row, len(matrix))
		}
		gathered[i] = matrix[row]
	}
	return gathered, nil
}

// ScatterAdd adds deltas[i] to row rows[i] for every i. Duplicate rows
// accumulate: the final row value reflects the sum of every delta addressed
// to it, never the last one alone. Validation happens before any row is
// touched, so a failed call leaves the store unchanged.
func (store *FactorStore) ScatterAdd(kind FactorKind, rows []int32, deltas [][]float32) error {
	matrix, err := store.matrix(kind)
	if err != nil {
		return errors.Trace(err)
	}
	if len(rows) != len(deltas) {
		return errors.Annotatef(ErrDimensionMismatch,
			"%d rows but %d deltas", len(rows), len(deltas))
	}
	for i, row := range rows {
		if row < 0 || int(row) >= len(matrix) {
			return errors.Annotatef(ErrIndexOutOfRange,
				"%v row %d not in [0, %d)", kind, row, len(matrix))
		}
		if len(deltas[i]) != store.nFactors {
			return errors.Annotatef(ErrDimensionMismatch,
				"delta %d has width %d, expected %d", i, len(deltas[i]), store.nFactors)
		}
	}
	for i, row := range rows {
		floats.Add(matrix[row], deltas[i])
	}
	return nil
}
