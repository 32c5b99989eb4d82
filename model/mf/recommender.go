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
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/reco-io/reco/base/floats"
)

// Predict scores items for a user. With no candidates, every trained item is
// scored; otherwise scoring is restricted to the given ids. The score of an
// item is the dot product of the user and item factors.
func (m *MF) Predict(user int, candidates ...int) (map[int]float32, error) {
	userRow, err := m.userRow(user)
	if err != nil {
		return nil, errors.Trace(err)
	}
	userFactor := m.store.UserFactor(userRow)
	if candidates == nil {
		candidates = m.itemIndex.GetNames()
	}
	scores := make(map[int]float32, len(candidates))
	for _, item := range candidates {
		itemRow, err := m.itemRow(item)
		if err != nil {
			return nil, errors.Trace(err)
		}
		scores[item] = floats.Dot(userFactor, m.store.ItemFactor(itemRow))
	}
	return scores, nil
}

// Recommend returns up to n item ids for a user, descending by predicted
// score with ties broken by ascending item id. When excludeKnown is set,
// items in the user's known positives are removed before ranking. A result
// shorter than n is a normal outcome, never an error.
func (m *MF) Recommend(user, n int, excludeKnown bool, known mapset.Set[int]) ([]int, error) {
	if n <= 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "n = %d", n)
	}
	scores, err := m.Predict(user)
	if err != nil {
		return nil, errors.Trace(err)
	}
	type scoredItem struct {
		item  int
		score float32
	}
	ranked := make([]scoredItem, 0, len(scores))
	for item, score := range scores {
		if excludeKnown && known != nil && known.Contains(item) {
			continue
		}
		ranked = append(ranked, scoredItem{item: item, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item < ranked[j].item
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	recommendations := make([]int, len(ranked))
	for i, s := range ranked {
		recommendations[i] = s.item
	}
	return recommendations, nil
}
