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

// Index manages the map between sparse ids and dense indices. A sparse ID is
// an external user ID or item ID (1-based in MovieLens-style data). The dense
// index is the internal row index optimized for faster parameter access and
// less memory usage. Every id-to-row translation in the code base goes
// through an Index, never through an inline offset.
type Index struct {
	Numbers map[int]int32 // sparse ID -> dense index
	Names   []int         // dense index -> sparse ID
}

// NotId represents an ID that doesn't exist.
const NotId = int32(-1)

// NewIndex creates an Index.
func NewIndex() *Index {
	set := new(Index)
	set.Numbers = make(map[int]int32)
	set.Names = make([]int, 0)
	return set
}

// Len returns the number of indexed ids.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.Names))
}

// Add adds a new ID to the indexer.
func (idx *Index) Add(name int) {
	if _, exist := idx.Numbers[name]; !exist {
		idx.Numbers[name] = int32(len(idx.Names))
		idx.Names = append(idx.Names, name)
	}
}

// ToNumber converts a sparse ID to a dense index. Returns NotId for an
// unknown ID.
func (idx *Index) ToNumber(name int) int32 {
	if denseId, exist := idx.Numbers[name]; exist {
		return denseId
	}
	return NotId
}

// ToName converts a dense index to a sparse ID.
func (idx *Index) ToName(index int32) int {
	return idx.Names[index]
}

// GetNames returns all ids in current index.
func (idx *Index) GetNames() []int {
	return idx.Names
}
