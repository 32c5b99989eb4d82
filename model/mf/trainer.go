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

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/reco-io/reco/base"
	"github.com/reco-io/reco/base/floats"
	"github.com/reco-io/reco/base/log"
	"github.com/reco-io/reco/base/progress"
	"github.com/reco-io/reco/dataset"
)

// Config holds the hyper-parameters of a fit.
type Config struct {
	NFactors    int     // number of latent factors
	NEpochs     int     // number of full passes over the training set
	BatchSize   int     // minibatch size; the last batch of an epoch may be short
	Lr          float32 // learning rate of SGD
	RandomState int64   // seed for initialization and batch shuffling
}

// Validate rejects a bad configuration before any work begins.
func (config Config) Validate() error {
	if config.NFactors <= 0 {
		return errors.Annotatef(ErrInvalidConfig, "NFactors = %d", config.NFactors)
	}
	if config.NEpochs < 0 {
		return errors.Annotatef(ErrInvalidConfig, "NEpochs = %d", config.NEpochs)
	}
	if config.BatchSize <= 0 {
		return errors.Annotatef(ErrInvalidConfig, "BatchSize = %d", config.BatchSize)
	}
	if math32.IsNaN(config.Lr) || math32.IsInf(config.Lr, 0) {
		return errors.Annotatef(ErrInvalidConfig, "Lr = %v", config.Lr)
	}
	return nil
}

// TracePoint is one record of the diagnostic loss trace: RMSE on the batch
// just processed and on the held-out set, both with current factors.
type TracePoint struct {
	Epoch     int
	Batch     int
	TrainRMSE float32
	TestRMSE  float32
}

// FitConfig holds runtime options of a fit, as opposed to hyper-parameters.
type FitConfig struct {
	// Verbose is the monitoring cadence in batches. Zero disables the trace.
	Verbose int
	// OnTrace, when set, observes every trace point as it is recorded.
	OnTrace func(TracePoint)
	// InitStore, when set, warm-starts the fit from a copy of these factors
	// instead of a random initialization. Dimensions must match the training
	// set and NFactors.
	InitStore *FactorStore
}

// NewFitConfig creates a FitConfig with default values.
func NewFitConfig() *FitConfig {
	return &FitConfig{Verbose: 10}
}

// SetVerbose sets the monitoring cadence.
func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

// SetOnTrace sets the trace observer.
func (config *FitConfig) SetOnTrace(fn func(TracePoint)) *FitConfig {
	config.OnTrace = fn
	return config
}

// SetInitStore sets the warm-start factors.
func (config *FitConfig) SetInitStore(store *FactorStore) *FitConfig {
	config.InitStore = store
	return config
}

// Fit learns a matrix factorization model on trainSet by minibatch SGD.
// testSet, when non-nil, is used only for held-out RMSE monitoring, never for
// training. The batch order is reshuffled every epoch with the configured
// seed offset by the epoch index, so runs are reproducible but epochs are not
// identical to each other. ctx is polled at epoch boundaries only, the sole
// safe cancellation point.
//
// Fit aborts with *FatalTrainingError if any error or gradient turns
// non-finite; this indicates divergence (e.g. a too-high learning rate) and
// is never retried.
func Fit(ctx context.Context, trainSet, testSet *dataset.Dataset, config Config, fitConfig *FitConfig) (*MF, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if trainSet.Count() == 0 {
		return nil, errors.Annotatef(ErrInvalidConfig, "empty training set")
	}
	if fitConfig == nil {
		fitConfig = NewFitConfig()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// Translate external ids to factor rows once, up front. Unknown ids in
	// the test set would mean the splits do not share indices.
	trainUsers, trainItems, trainValues, err := ratingsToRows(trainSet.Ratings, trainSet.UserIndex, trainSet.ItemIndex)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var testUsers, testItems []int32
	var testValues []float32
	if testSet.Count() > 0 {
		testUsers, testItems, testValues, err = ratingsToRows(testSet.Ratings, trainSet.UserIndex, trainSet.ItemIndex)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	var store *FactorStore
	if fitConfig.InitStore != nil {
		init := fitConfig.InitStore
		if init.NumUsers() != trainSet.CountUsers() || init.NumItems() != trainSet.CountItems() ||
			init.NFactors() != config.NFactors {
			return nil, errors.Annotatef(ErrDimensionMismatch,
				"warm-start store is %dx%d with %d factors, training set needs %dx%d with %d",
				init.NumUsers(), init.NumItems(), init.NFactors(),
				trainSet.CountUsers(), trainSet.CountItems(), config.NFactors)
		}
		if store, err = NewFactorStoreFromMatrices(init.userFactor, init.itemFactor); err != nil {
			return nil, errors.Trace(err)
		}
	} else if store, err = NewFactorStore(trainSet.CountUsers(), trainSet.CountItems(), config.NFactors, config.RandomState); err != nil {
		return nil, errors.Trace(err)
	}
	m := &MF{store: store, userIndex: trainSet.UserIndex, itemIndex: trainSet.ItemIndex}
	log.Logger().Info("fit mf",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()),
		zap.Any("config", config))
	n := trainSet.Count()
	numBatches := (n + config.BatchSize - 1) / config.BatchSize
	// Batch buffers, reused across batches.
	maxBatch := min(config.BatchSize, n)
	batchUsers := make([]int32, maxBatch)
	batchItems := make([]int32, maxBatch)
	batchValues := make([]float32, maxBatch)
	residuals := make([]float32, maxBatch)
	userGrad := make([][]float32, maxBatch)
	itemGrad := make([][]float32, maxBatch)
	for i := range userGrad {
		userGrad[i] = make([]float32, config.NFactors)
		itemGrad[i] = make([]float32, config.NFactors)
	}
	loss := SquaredLoss{}
	_, span := progress.Start(ctx, "MF.Fit", config.NEpochs)
	defer span.End()
	for epoch := 0; epoch < config.NEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, errors.Trace(ctx.Err())
		default:
		}
		rng := base.NewRandomGenerator(config.RandomState + int64(epoch))
		perm := rng.Perm(n)
		for b := 0; b < numBatches; b++ {
			begin := b * config.BatchSize
			end := min(begin+config.BatchSize, n)
			size := end - begin
			for i := 0; i < size; i++ {
				j := perm[begin+i]
				batchUsers[i] = trainUsers[j]
				batchItems[i] = trainItems[j]
				batchValues[i] = trainValues[j]
			}
			userRows, err := store.Gather(UserFactors, batchUsers[:size])
			if err != nil {
				return nil, errors.Trace(err)
			}
			itemRows, err := store.Gather(ItemFactors, batchItems[:size])
			if err != nil {
				return nil, errors.Trace(err)
			}
			if err = loss.Gradients(batchValues[:size], userRows, itemRows,
				residuals[:size], userGrad[:size], itemGrad[:size]); err != nil {
				return nil, errors.Trace(err)
			}
			if err = checkFinite(residuals[:size], userGrad[:size], itemGrad[:size]); err != nil {
				return nil, &FatalTrainingError{Epoch: epoch, Batch: b, Err: err}
			}
			// Gradient descent step: subtract lr-scaled gradients.
			for i := 0; i < size; i++ {
				floats.MulConst(userGrad[i], -config.Lr)
				floats.MulConst(itemGrad[i], -config.Lr)
			}
			if err = store.ScatterAdd(UserFactors, batchUsers[:size], userGrad[:size]); err != nil {
				return nil, errors.Trace(err)
			}
			if err = store.ScatterAdd(ItemFactors, batchItems[:size], itemGrad[:size]); err != nil {
				return nil, errors.Trace(err)
			}
			if fitConfig.Verbose > 0 && (b+1)%fitConfig.Verbose == 0 {
				point := TracePoint{Epoch: epoch, Batch: b}
				if point.TrainRMSE, err = RMSE(store, batchUsers[:size], batchItems[:size], batchValues[:size]); err != nil {
					return nil, errors.Trace(err)
				}
				if len(testValues) > 0 {
					if point.TestRMSE, err = RMSE(store, testUsers, testItems, testValues); err != nil {
						return nil, errors.Trace(err)
					}
				}
				m.trace = append(m.trace, point)
				log.Logger().Debug("fit mf",
					zap.Int("epoch", point.Epoch),
					zap.Int("batch", point.Batch),
					zap.Float32("train_rmse", point.TrainRMSE),
					zap.Float32("test_rmse", point.TestRMSE))
				if fitConfig.OnTrace != nil {
					fitConfig.OnTrace(point)
				}
			}
		}
		span.Add(1)
	}
	trainRMSE, err := RMSE(store, trainUsers, trainItems, trainValues)
	if err != nil {
		return nil, errors.Trace(err)
	}
	fields := []zap.Field{
		zap.Int("epochs", config.NEpochs),
		zap.Float32("train_rmse", trainRMSE),
	}
	if len(testValues) > 0 {
		testRMSE, err := RMSE(store, testUsers, testItems, testValues)
		if err != nil {
			return nil, errors.Trace(err)
		}
		fields = append(fields, zap.Float32("test_rmse", testRMSE))
	}
	log.Logger().Info("fit mf complete", fields...)
	return m, nil
}

// checkFinite rejects NaN and infinities in residuals and gradients.
func checkFinite(residuals []float32, userGrad, itemGrad [][]float32) error {
	for _, e := range residuals {
		if math32.IsNaN(e) || math32.IsInf(e, 0) {
			return errors.Errorf("non-finite error %v", e)
		}
	}
	for _, grads := range [][][]float32{userGrad, itemGrad} {
		for _, row := range grads {
			for _, g := range row {
				if math32.IsNaN(g) || math32.IsInf(g, 0) {
					return errors.Errorf("non-finite gradient %v", g)
				}
			}
		}
	}
	return nil
}
