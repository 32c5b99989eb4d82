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
	"context"
	"sync"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"

	"github.com/reco-io/reco/base/floats"
	"github.com/reco-io/reco/base/parallel"
	"github.com/reco-io/reco/dataset"
)

// RMSE computes sqrt(mean((value - prediction)^2)) over the given rows with
// the store's current factors. User rows index the user matrix and item rows
// the item matrix; mixing them up is rejected by the store's range checks
// whenever the matrices differ in row count.
func RMSE(store *FactorStore, userRows, itemRows []int32, values []float32) (float32, error) {
	if len(userRows) != len(itemRows) || len(userRows) != len(values) {
		return 0, errors.Annotatef(ErrDimensionMismatch,
			"%d user rows, %d item rows, %d values", len(userRows), len(itemRows), len(values))
	}
	if len(values) == 0 {
		return 0, errors.Annotatef(ErrInvalidConfig, "empty rating set")
	}
	userFactors, err := store.Gather(UserFactors, userRows)
	if err != nil {
		return 0, errors.Trace(err)
	}
	itemFactors, err := store.Gather(ItemFactors, itemRows)
	if err != nil {
		return 0, errors.Trace(err)
	}
	var sum float32
	for i, value := range values {
		e := value - floats.Dot(userFactors[i], itemFactors[i])
		sum += e * e
	}
	return math32.Sqrt(sum / float32(len(values))), nil
}

// RelevantItems groups held-out ratings by user into relevance sets. Users
// with no held-out ratings are absent from the result, not zero-filled.
func RelevantItems(testRatings []dataset.Rating) map[int]mapset.Set[int] {
	relevant := make(map[int]mapset.Set[int])
	for _, r := range testRatings {
		if _, exist := relevant[r.User]; !exist {
			relevant[r.User] = mapset.NewSet[int]()
		}
		relevant[r.User].Add(r.Item)
	}
	return relevant
}

// PrecisionAt is the fraction of the top-N recommended items that appear in
// the relevance set:
//
//	|recommendations ∩ relevant| / N
//
// The denominator stays N even when fewer relevant items exist.
func PrecisionAt(recommendations []int, relevant mapset.Set[int], n int) float32 {
	hit := 0
	for _, item := range recommendations {
		if relevant.Contains(item) {
			hit++
		}
	}
	return float32(hit) / float32(n)
}

// Evaluate computes Precision@N per user against held-out ratings, excluding
// each user's known positives from the recommendations. Users absent from
// the held-out data are skipped, not scored as zero; the mean is taken over
// the precision values actually computed. Evaluation fans out over users on
// jobs workers; it only reads the factor store.
func (m *MF) Evaluate(ctx context.Context, users []int, testRatings []dataset.Rating, known map[int]mapset.Set[int], n, jobs int) (map[int]float32, float32, error) {
	if n <= 0 {
		return nil, 0, errors.Annotatef(ErrInvalidConfig, "n = %d", n)
	}
	if len(users) == 0 {
		return nil, 0, errors.Annotatef(ErrInvalidConfig, "empty user set")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	relevant := RelevantItems(testRatings)
	precisions := make(map[int]float32, len(users))
	var mu sync.Mutex
	err := parallel.Parallel(ctx, len(users), jobs, func(_, i int) error {
		user := users[i]
		relevantSet, exist := relevant[user]
		if !exist {
			return nil
		}
		recommendations, err := m.Recommend(user, n, true, known[user])
		if err != nil {
			return errors.Trace(err)
		}
		precision := PrecisionAt(recommendations, relevantSet, n)
		mu.Lock()
		precisions[user] = precision
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, 0, errors.Trace(err)
	}
	if len(precisions) == 0 {
		return precisions, 0, nil
	}
	mean := lo.Sum(lo.Values(precisions)) / float32(len(precisions))
	return precisions, mean, nil
}
