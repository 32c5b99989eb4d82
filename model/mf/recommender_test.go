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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reco-io/reco/base"
)

func newIndex(ids ...int) *base.Index {
	idx := base.NewIndex()
	for _, id := range ids {
		idx.Add(id)
	}
	return idx
}

// newTestModel builds a rank-1 model where the score of item i for user u is
// userWeight[u] * itemWeight[i], so rankings are easy to state by hand.
func newTestModel(t *testing.T) *MF {
	store, err := NewFactorStoreFromMatrices(
		[][]float32{{1}, {2}},            // users 1, 2
		[][]float32{{3}, {1}, {2}, {1}}) // items 10, 20, 30, 40
	require.NoError(t, err)
	m, err := NewModel(store, newIndex(1, 2), newIndex(10, 20, 30, 40))
	require.NoError(t, err)
	return m
}

func TestNewModelMismatch(t *testing.T) {
	store, err := NewFactorStoreFromMatrices([][]float32{{1}}, [][]float32{{1}, {2}})
	require.NoError(t, err)
	_, err = NewModel(store, newIndex(1, 2), newIndex(10, 20))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = NewModel(store, newIndex(1), newIndex(10))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredictOne(t *testing.T) {
	m := newTestModel(t)
	score, err := m.PredictOne(2, 30)
	require.NoError(t, err)
	assert.Equal(t, float32(4), score)

	_, err = m.PredictOne(3, 10)
	assert.ErrorIs(t, err, ErrUnknownUser)
	_, err = m.PredictOne(1, 99)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestPredict(t *testing.T) {
	m := newTestModel(t)
	// no candidates scores every trained item
	scores, err := m.Predict(1)
	require.NoError(t, err)
	assert.Equal(t, map[int]float32{10: 3, 20: 1, 30: 2, 40: 1}, scores)

	// candidates restrict scoring
	scores, err = m.Predict(2, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, map[int]float32{20: 2, 40: 2}, scores)

	_, err = m.Predict(3)
	assert.ErrorIs(t, err, ErrUnknownUser)
	_, err = m.Predict(1, 10, 99)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestRecommend(t *testing.T) {
	m := newTestModel(t)
	// user 1 scores: 10 -> 3, 30 -> 2, 20 -> 1, 40 -> 1; the 20/40 tie breaks
	// by ascending item id
	recommendations, err := m.Recommend(1, 4, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30, 20, 40}, recommendations)

	// truncated to n
	recommendations, err = m.Recommend(1, 2, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30}, recommendations)

	// n larger than the catalog is a shortfall, not an error
	recommendations, err = m.Recommend(1, 100, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30, 20, 40}, recommendations)
}

func TestRecommendExcludeKnown(t *testing.T) {
	m := newTestModel(t)
	known := mapset.NewSet(10, 30)
	recommendations, err := m.Recommend(1, 4, true, known)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 40}, recommendations)

	// known items never reappear, whatever n is
	recommendations, err = m.Recommend(1, 100, true, known)
	require.NoError(t, err)
	assert.NotContains(t, recommendations, 10)
	assert.NotContains(t, recommendations, 30)

	// excludeKnown with no known set behaves like no exclusion
	recommendations, err = m.Recommend(1, 4, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30, 20, 40}, recommendations)

	// everything known yields an empty result
	recommendations, err = m.Recommend(1, 4, true, mapset.NewSet(10, 20, 30, 40))
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestRecommendInvalid(t *testing.T) {
	m := newTestModel(t)
	_, err := m.Recommend(1, 0, false, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = m.Recommend(1, -1, false, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = m.Recommend(9, 4, false, nil)
	assert.ErrorIs(t, err, ErrUnknownUser)
}
