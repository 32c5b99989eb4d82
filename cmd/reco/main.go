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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reco-io/reco/base/log"
	"github.com/reco-io/reco/dataset"
	"github.com/reco-io/reco/model/mf"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "reco",
	Short: "reco trains and evaluates matrix factorization recommenders",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of reco",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var fitCmd = &cobra.Command{
	Use:   "fit RATINGS_FILE",
	Short: "Fit a model on a ratings file and report ranking quality",
	Long: "Fit loads a separated-values ratings file (user, item, rating[, timestamp]),\n" +
		"splits it into train and test partitions, fits a matrix factorization model\n" +
		"by minibatch SGD and reports held-out RMSE and Precision@N.",
	Args: cobra.ExactArgs(1),
	RunE: runFit,
}

func init() {
	log.AddFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	flags := fitCmd.Flags()
	flags.String("config", "", "path of a config file with the flags below as keys")
	flags.String("sep", "\t", "field separator of the ratings file")
	flags.Float64("test-ratio", 0.2, "fraction of ratings held out for evaluation")
	flags.Int("factors", 64, "number of latent factors")
	flags.Int("epochs", 20, "number of training epochs")
	flags.Int("batch-size", 128, "minibatch size")
	flags.Float64("lr", 0.01, "learning rate")
	flags.Int64("seed", 42, "random seed")
	flags.Int("verbose", 10, "monitoring cadence in batches, 0 disables the loss trace")
	flags.Int("top-n", 10, "length of recommendation lists for Precision@N")
	flags.Int("jobs", runtime.NumCPU(), "number of evaluation workers")
	rootCmd.AddCommand(fitCmd, versionCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	log.SetLogger(cmd.Flags(), debug)
	settings := viper.New()
	if err := settings.BindPFlags(cmd.Flags()); err != nil {
		return errors.Trace(err)
	}
	if configPath := settings.GetString("config"); configPath != "" {
		settings.SetConfigFile(configPath)
		if err := settings.ReadInConfig(); err != nil {
			return errors.Trace(err)
		}
	}
	sep := settings.GetString("sep")
	if sep == "\\t" {
		sep = "\t"
	}
	data, err := dataset.LoadFromCSV(args[0], sep)
	if err != nil {
		return errors.Trace(err)
	}
	seed := settings.GetInt64("seed")
	trainSet, testSet := data.Split(float32(settings.GetFloat64("test-ratio")), seed)
	log.Logger().Info("loaded ratings",
		zap.String("path", args[0]),
		zap.Int("ratings", data.Count()),
		zap.Int("users", data.CountUsers()),
		zap.Int("items", data.CountItems()),
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("test_set_size", testSet.Count()))
	config := mf.Config{
		NFactors:    settings.GetInt("factors"),
		NEpochs:     settings.GetInt("epochs"),
		BatchSize:   settings.GetInt("batch-size"),
		Lr:          float32(settings.GetFloat64("lr")),
		RandomState: seed,
	}
	verbose := settings.GetInt("verbose")
	fitConfig := mf.NewFitConfig().SetVerbose(verbose)
	var bar *progressbar.ProgressBar
	if verbose > 0 {
		numBatches := (trainSet.Count() + config.BatchSize - 1) / config.BatchSize
		if ticks := config.NEpochs * (numBatches / verbose); ticks > 0 {
			bar = progressbar.Default(int64(ticks), "fit")
			fitConfig.SetOnTrace(func(mf.TracePoint) {
				_ = bar.Add(1)
			})
		}
	}
	m, err := mf.Fit(cmd.Context(), trainSet, testSet, config, fitConfig)
	if err != nil {
		return errors.Trace(err)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if testSet.Count() == 0 {
		log.Logger().Warn("no held-out ratings, skipping evaluation")
		return nil
	}
	topN := settings.GetInt("top-n")
	precisions, mean, err := m.Evaluate(cmd.Context(), trainSet.Users(), testSet.Ratings,
		trainSet.KnownPositives(), topN, settings.GetInt("jobs"))
	if err != nil {
		return errors.Trace(err)
	}
	testRMSE, err := m.RMSE(testSet.Ratings)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("evaluation complete",
		zap.Int("users_evaluated", len(precisions)),
		zap.Float32(fmt.Sprintf("precision@%d", topN), mean),
		zap.Float32("test_rmse", testRMSE))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
