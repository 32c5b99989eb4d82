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
	"github.com/juju/errors"

	"github.com/reco-io/reco/base/floats"
)

// SquaredLoss computes per-instance gradients of the squared-error loss
//
//	L = (r_ui - p_u^T q_i)^2 + Reg (|p_u|^2 + |q_i|^2)
//
// It is stateless and side-effect free: gradients are one row per batch
// entry, never pre-aggregated. Accumulation across duplicate rows is the
// FactorStore's contract.
type SquaredLoss struct {
	// Reg is the L2 regularization strength. Zero disables the term.
	Reg float32
}

// Gradients fills userGrad and itemGrad with the per-instance gradients for a
// batch, and residuals with the per-instance errors e = value - p_u^T q_i:
//
//	userGrad[i] = -2 e q_i + Reg p_u
//	itemGrad[i] = -2 e p_u + Reg q_i
//
// All buffers are caller-owned; rows of userGrad and itemGrad must have the
// factor dimension.
func (loss SquaredLoss) Gradients(values []float32, userRows, itemRows [][]float32, residuals []float32, userGrad, itemGrad [][]float32) error {
	n := len(values)
	if len(userRows) != n || len(itemRows) != n || len(residuals) != n ||
		len(userGrad) != n || len(itemGrad) != n {
		return errors.Annotatef(ErrDimensionMismatch,
			"batch buffers disagree: %d values, %d/%d rows, %d residuals, %d/%d gradients",
			n, len(userRows), len(itemRows), len(residuals), len(userGrad), len(itemGrad))
	}
	for i := 0; i < n; i++ {
		if len(userGrad[i]) != len(userRows[i]) || len(itemGrad[i]) != len(itemRows[i]) {
			return errors.Annotatef(ErrDimensionMismatch,
				"gradient %d width disagrees with embedding width", i)
		}
		e := values[i] - floats.Dot(userRows[i], itemRows[i])
		residuals[i] = e
		floats.MulConstTo(itemRows[i], -2*e, userGrad[i])
		floats.MulConstTo(userRows[i], -2*e, itemGrad[i])
		if loss.Reg > 0 {
			floats.MulConstAdd(userRows[i], loss.Reg, userGrad[i])
			floats.MulConstAdd(itemRows[i], loss.Reg, itemGrad[i])
		}
	}
	return nil
}
