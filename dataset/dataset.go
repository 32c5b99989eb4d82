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

// Package dataset loads and partitions rating data. It is the boundary
// between external 1-based ids and the dense row indices used by models:
// every translation goes through the Index attached to a Dataset.
package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/reco-io/reco/base"
)

// Rating is a single (user, item, value) observation. User and item ids are
// external ids, 1-based in MovieLens-style data. Timestamp is carried through
// but unused by training.
type Rating struct {
	User      int
	Item      int
	Value     float32
	Timestamp int64
}

// Dataset is an ordered sequence of ratings plus the id indices shared by
// every split derived from the same source.
type Dataset struct {
	Ratings   []Rating
	UserIndex *base.Index
	ItemIndex *base.Index
}

// New creates a dataset from ratings. Indices are built in first-seen order,
// so construction is deterministic for a fixed rating order.
func New(ratings []Rating) *Dataset {
	d := &Dataset{
		Ratings:   ratings,
		UserIndex: base.NewIndex(),
		ItemIndex: base.NewIndex(),
	}
	for _, r := range ratings {
		d.UserIndex.Add(r.User)
		d.ItemIndex.Add(r.Item)
	}
	return d
}

// Count returns the number of ratings.
func (d *Dataset) Count() int {
	if d == nil {
		return 0
	}
	return len(d.Ratings)
}

// CountUsers returns the number of distinct users.
func (d *Dataset) CountUsers() int {
	return int(d.UserIndex.Len())
}

// CountItems returns the number of distinct items.
func (d *Dataset) CountItems() int {
	return int(d.ItemIndex.Len())
}

// Users returns all external user ids in index order.
func (d *Dataset) Users() []int {
	return append([]int(nil), d.UserIndex.Names...)
}

// Items returns all external item ids in index order.
func (d *Dataset) Items() []int {
	return append([]int(nil), d.ItemIndex.Names...)
}

// LoadFromCSV loads a dataset from a separated-values file with the column
// layout (user, item, rating[, timestamp]), e.g. the MovieLens u.data file
// with sep = "\t".
func LoadFromCSV(path, sep string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var ratings []Rating
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 3 {
			return nil, errors.Errorf("%s:%d: expected at least 3 fields, got %d", path, lineNo, len(fields))
		}
		user, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d", path, lineNo)
		}
		item, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d", path, lineNo)
		}
		value, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d", path, lineNo)
		}
		var timestamp int64
		if len(fields) > 3 {
			timestamp, err = strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				return nil, errors.Annotatef(err, "%s:%d", path, lineNo)
			}
		}
		ratings = append(ratings, Rating{
			User:      user,
			Item:      item,
			Value:     float32(value),
			Timestamp: timestamp,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return New(ratings), nil
}

// Split partitions the dataset into a training set and a test set by a
// deterministic shuffle. Both splits share this dataset's id indices so that
// factor rows trained on the training set cover every id seen in the test
// set.
func (d *Dataset) Split(testRatio float32, seed int64) (train, test *Dataset) {
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(len(d.Ratings))
	numTest := int(float32(len(d.Ratings)) * testRatio)
	testRatings := make([]Rating, 0, numTest)
	trainRatings := make([]Rating, 0, len(d.Ratings)-numTest)
	for i, j := range perm {
		if i < numTest {
			testRatings = append(testRatings, d.Ratings[j])
		} else {
			trainRatings = append(trainRatings, d.Ratings[j])
		}
	}
	train = &Dataset{Ratings: trainRatings, UserIndex: d.UserIndex, ItemIndex: d.ItemIndex}
	test = &Dataset{Ratings: testRatings, UserIndex: d.UserIndex, ItemIndex: d.ItemIndex}
	return
}

// UserRatings groups ratings by user: user id -> item id -> rating value.
func (d *Dataset) UserRatings() map[int]map[int]float32 {
	ratings := make(map[int]map[int]float32)
	for _, r := range d.Ratings {
		if _, exist := ratings[r.User]; !exist {
			ratings[r.User] = make(map[int]float32)
		}
		ratings[r.User][r.Item] = r.Value
	}
	return ratings
}

// KnownPositives returns, per user, the set of item ids the user has rated in
// this dataset. Recommenders use it to suppress already-seen items.
func (d *Dataset) KnownPositives() map[int]mapset.Set[int] {
	known := make(map[int]mapset.Set[int])
	for _, r := range d.Ratings {
		if _, exist := known[r.User]; !exist {
			known[r.User] = mapset.NewSet[int]()
		}
		known[r.User].Add(r.Item)
	}
	return known
}
