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

// Package mf learns a rank-d factorization of a sparse user-item rating
// matrix by minibatch stochastic gradient descent on squared error, scores
// and ranks items per user, and evaluates ranking quality against held-out
// data.
package mf

import (
	"github.com/juju/errors"

	"github.com/reco-io/reco/base"
	"github.com/reco-io/reco/base/floats"
	"github.com/reco-io/reco/dataset"
)

// MF is a trained matrix factorization model: a FactorStore plus the id
// indices that translate external user and item ids to factor rows. The
// prediction for a (user, item) pair is the dot product of their latent
// factors.
type MF struct {
	store     *FactorStore
	userIndex *base.Index
	itemIndex *base.Index
	trace     []TracePoint
}

// NewModel bundles a factor store with id indices, e.g. to score with
// pretrained factors. Index sizes must match the store's row counts.
func NewModel(store *FactorStore, userIndex, itemIndex *base.Index) (*MF, error) {
	if int(userIndex.Len()) != store.NumUsers() {
		return nil, errors.Annotatef(ErrDimensionMismatch,
			"%d indexed users but %d user rows", userIndex.Len(), store.NumUsers())
	}
	if int(itemIndex.Len()) != store.NumItems() {
		return nil, errors.Annotatef(ErrDimensionMismatch,
			"%d indexed items but %d item rows", itemIndex.Len(), store.NumItems())
	}
	return &MF{store: store, userIndex: userIndex, itemIndex: itemIndex}, nil
}

// Store returns the underlying factor store.
func (m *MF) Store() *FactorStore {
	return m.store
}

// Trace returns the loss trace recorded during fitting, one point per
// monitoring tick, in order. Diagnostic only.
func (m *MF) Trace() []TracePoint {
	return m.trace
}

// userRow translates an external user id to a factor row.
func (m *MF) userRow(user int) (int32, error) {
	row := m.userIndex.ToNumber(user)
	if row == base.NotId {
		return base.NotId, errors.Annotatef(ErrUnknownUser, "user %d", user)
	}
	return row, nil
}

// itemRow translates an external item id to a factor row.
func (m *MF) itemRow(item int) (int32, error) {
	row := m.itemIndex.ToNumber(item)
	if row == base.NotId {
		return base.NotId, errors.Annotatef(ErrUnknownItem, "item %d", item)
	}
	return row, nil
}

// PredictOne predicts the rating given by a user to an item.
func (m *MF) PredictOne(user, item int) (float32, error) {
	userRow, err := m.userRow(user)
	if err != nil {
		return 0, errors.Trace(err)
	}
	itemRow, err := m.itemRow(item)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return floats.Dot(m.store.UserFactor(userRow), m.store.ItemFactor(itemRow)), nil
}

// RMSE computes the root-mean-squared error of the model's predictions over
// the given ratings with the current factors.
func (m *MF) RMSE(ratings []dataset.Rating) (float32, error) {
	userRows, itemRows, values, err := ratingsToRows(ratings, m.userIndex, m.itemIndex)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return RMSE(m.store, userRows, itemRows, values)
}

// ratingsToRows translates external ids of a rating sequence to factor rows.
func ratingsToRows(ratings []dataset.Rating, userIndex, itemIndex *base.Index) (userRows, itemRows []int32, values []float32, err error) {
	userRows = make([]int32, len(ratings))
	itemRows = make([]int32, len(ratings))
	values = make([]float32, len(ratings))
	for i, r := range ratings {
		userRow := userIndex.ToNumber(r.User)
		if userRow == base.NotId {
			return nil, nil, nil, errors.Annotatef(ErrUnknownUser, "user %d", r.User)
		}
		itemRow := itemIndex.ToNumber(r.Item)
		if itemRow == base.NotId {
			return nil, nil, nil, errors.Annotatef(ErrUnknownItem, "item %d", r.Item)
		}
		userRows[i] = userRow
		itemRows[i] = itemRow
		values[i] = r.Value
	}
	return
}
