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

package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	for _, workers := range []int{1, 4} {
		var count atomic.Int64
		seen := make([]atomic.Bool, 100)
		err := Parallel(context.Background(), 100, workers, func(workerId, jobId int) error {
			count.Add(1)
			seen[jobId].Store(true)
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(100), count.Load())
		for i := range seen {
			assert.True(t, seen[i].Load())
		}
	}
}

func TestParallelError(t *testing.T) {
	expected := errors.New("boom")
	for _, workers := range []int{1, 4} {
		err := Parallel(context.Background(), 100, workers, func(workerId, jobId int) error {
			if jobId == 50 {
				return expected
			}
			return nil
		})
		assert.ErrorIs(t, err, expected)
	}
}

func TestParallelCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parallel(ctx, 100, 4, func(workerId, jobId int) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
