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

package progress

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestSpan(t *testing.T) {
	ctx, span := Start(context.Background(), "fit", 10)
	assert.Equal(t, "fit", span.Name())
	assert.Equal(t, 10, span.Total())
	assert.Equal(t, StatusRunning, span.Status())

	fromCtx, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, span, fromCtx)

	span.Add(3)
	span.Add(4)
	assert.Equal(t, 7, span.Count())
	span.End()
	assert.Equal(t, 10, span.Count())
	assert.Equal(t, StatusComplete, span.Status())
}

func TestSpanFail(t *testing.T) {
	_, span := Start(nil, "fit", 1)
	span.Fail(errors.New("diverged"))
	assert.Equal(t, StatusFailed, span.Status())
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	_, ok = FromContext(nil)
	assert.False(t, ok)
}
