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

package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	// create a index
	idx := NewIndex()
	assert.Zero(t, idx.Len())
	// add ids
	idx.Add(1)
	idx.Add(2)
	idx.Add(4)
	idx.Add(8)
	// add a duplicate id
	idx.Add(1)
	assert.Equal(t, int32(4), idx.Len())
	assert.Equal(t, []int{1, 2, 4, 8}, idx.GetNames())
	// translate both ways
	for i, id := range []int{1, 2, 4, 8} {
		assert.Equal(t, int32(i), idx.ToNumber(id))
		assert.Equal(t, id, idx.ToName(int32(i)))
	}
	// unknown id
	assert.Equal(t, NotId, idx.ToNumber(1000))
}

func TestIndexNil(t *testing.T) {
	var idx *Index
	assert.Zero(t, idx.Len())
}
