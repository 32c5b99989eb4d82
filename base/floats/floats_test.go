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

package floats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.Equal(t, float32(32), Dot(a, b))
	assert.Panics(t, func() { Dot(a, b[:2]) })
}

func TestAdd(t *testing.T) {
	a := []float32{1, 2, 3}
	Add(a, []float32{10, 20, 30})
	assert.Equal(t, []float32{11, 22, 33}, a)
	assert.Panics(t, func() { Add(a, []float32{1}) })
}

func TestAddTo(t *testing.T) {
	dst := make([]float32, 3)
	AddTo([]float32{1, 2, 3}, []float32{4, 5, 6}, dst)
	assert.Equal(t, []float32{5, 7, 9}, dst)
	assert.Panics(t, func() { AddTo([]float32{1}, []float32{1, 2}, dst) })
}

func TestSub(t *testing.T) {
	a := []float32{4, 5, 6}
	Sub(a, []float32{1, 2, 3})
	assert.Equal(t, []float32{3, 3, 3}, a)
	assert.Panics(t, func() { Sub(a, []float32{1}) })
}

func TestSubTo(t *testing.T) {
	dst := make([]float32, 3)
	SubTo([]float32{4, 5, 6}, []float32{1, 2, 3}, dst)
	assert.Equal(t, []float32{3, 3, 3}, dst)
	assert.Panics(t, func() { SubTo([]float32{1}, []float32{1, 2}, dst) })
}

func TestMulConst(t *testing.T) {
	a := []float32{1, 2, 3}
	MulConst(a, 2)
	assert.Equal(t, []float32{2, 4, 6}, a)
}

func TestMulConstTo(t *testing.T) {
	dst := make([]float32, 3)
	MulConstTo([]float32{1, 2, 3}, -2, dst)
	assert.Equal(t, []float32{-2, -4, -6}, dst)
	assert.Panics(t, func() { MulConstTo([]float32{1}, 2, dst) })
}

func TestMulConstAdd(t *testing.T) {
	dst := []float32{1, 1, 1}
	MulConstAdd([]float32{1, 2, 3}, 2, dst)
	assert.Equal(t, []float32{3, 5, 7}, dst)
	assert.Panics(t, func() { MulConstAdd([]float32{1}, 2, dst) })
}

func TestZero(t *testing.T) {
	a := []float32{1, 2, 3}
	Zero(a)
	assert.Equal(t, []float32{0, 0, 0}, a)
}

func TestMatZero(t *testing.T) {
	x := [][]float32{{1, 2}, {3, 4}}
	MatZero(x)
	assert.Equal(t, [][]float32{{0, 0}, {0, 0}}, x)
}
