// Copyright 2025 The mlp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mlp

import (
	"context"
	"math/rand"

	"github.com/adsingh-64/mlp/internal/dataset"
	"github.com/adsingh-64/mlp/internal/nn"
	"github.com/adsingh-64/mlp/internal/optim"
	"github.com/adsingh-64/mlp/internal/parallel"
	"github.com/adsingh-64/mlp/internal/serialization"
	"github.com/adsingh-64/mlp/internal/trainer"
)

// Network model and gradients.

// Network is a fully connected feedforward network with sigmoid
// activations.
type Network = nn.Network

// Gradients holds per-layer cost gradients shaped like the network
// parameters.
type Gradients = nn.Gradients

// ShapeError reports a sample vector whose length does not match the
// network.
type ShapeError = nn.ShapeError

// Cost functions.

// Cost scores network output against a target and seeds
// backpropagation with the output-layer error.
type Cost = nn.Cost

// Quadratic is the squared-error cost ½‖a−y‖².
type Quadratic = nn.Quadratic

// CrossEntropy is the cost −Σ[y·ln(a) + (1−y)·ln(1−a)]; its
// output-layer error (a−y) is independent of the sigmoid derivative.
type CrossEntropy = nn.CrossEntropy

// CostByName returns the cost for a kind name ("quadratic",
// "cross-entropy").
func CostByName(name string) (Cost, error) { return nn.CostByName(name) }

// Regularization penalties.

// Penalty computes the regularization term added to the weight
// gradients.
type Penalty = optim.Penalty

// NoPenalty applies no regularization.
type NoPenalty = optim.NoPenalty

// L1 penalizes absolute weight magnitude.
type L1 = optim.L1

// L2 penalizes squared weight magnitude (weight decay).
type L2 = optim.L2

// PenaltyByName returns the penalty for a kind name ("none", "l1",
// "l2").
func PenaltyByName(name string) (Penalty, error) { return optim.PenaltyByName(name) }

// Datasets.

// Sample is one (input, target) pair.
type Sample = dataset.Sample

// Dataset is an ordered sequence of samples.
type Dataset = dataset.Dataset

// OneHot returns an n-element vector with a 1 at index label.
func OneHot(label, n int) []float64 { return dataset.OneHot(label, n) }

// XOR returns the four-sample XOR truth table.
func XOR() Dataset { return dataset.XOR() }

// LoadCSV reads a labeled dataset from a label,features... CSV file.
func LoadCSV(path string, numClasses int, scale float64) (Dataset, error) {
	return dataset.LoadCSV(path, numClasses, scale)
}

// Training.

// Config holds the hyperparameters of one training run.
type Config = trainer.Config

// EpochStats is one row of the per-epoch training log.
type EpochStats = trainer.EpochStats

// Result summarizes a completed training run.
type Result = trainer.Result

// Trainer runs mini-batch SGD over a network.
type Trainer = trainer.Trainer

// Schedule adjusts the learning rate from validation feedback.
type Schedule = trainer.Schedule

// Constant keeps the learning rate fixed.
type Constant = trainer.Constant

// HalveOnPlateau halves the learning rate when validation accuracy
// plateaus.
type HalveOnPlateau = trainer.HalveOnPlateau

// NewHalveOnPlateau creates a plateau schedule.
func NewHalveOnPlateau(patience, maxHalves int) *HalveOnPlateau {
	return trainer.NewHalveOnPlateau(patience, maxHalves)
}

// EarlyStopping halts training when validation accuracy stops
// improving.
type EarlyStopping = trainer.EarlyStopping

// ConfigError reports an invalid training configuration.
type ConfigError = trainer.ConfigError

// InstabilityError reports non-finite values encountered during
// training.
type InstabilityError = trainer.InstabilityError

// ParallelConfig controls intra-batch parallel gradient accumulation.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns parallelism defaults based on CPU
// count.
func DefaultParallelConfig() ParallelConfig { return parallel.DefaultConfig() }

// NewNetwork creates a network with the given layer sizes and cost,
// drawing initial parameters from a generator seeded with seed.
func NewNetwork(sizes []int, cost Cost, seed int64) (*Network, error) {
	return nn.New(sizes, cost, rand.New(rand.NewSource(seed)))
}

// NewTrainer creates a trainer for net.
func NewTrainer(net *Network, cfg Config) (*Trainer, error) {
	return trainer.New(net, cfg)
}

// Train runs one full training pass over net with cfg. validation may
// be nil, in which case the training set drives the schedule and early
// stopping.
//
// Example:
//
//	result, err := mlp.Train(ctx, net, mlp.Config{
//	    Epochs:       30,
//	    BatchSize:    10,
//	    LearningRate: 0.5,
//	    Lambda:       5.0,
//	    Penalty:      mlp.L2{},
//	}, training, validation)
func Train(ctx context.Context, net *Network, cfg Config, training, validation Dataset) (*Result, error) {
	t, err := trainer.New(net, cfg)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, training, validation)
}

// Evaluate runs net over data and returns the average cost, the
// correct classification count and the accuracy.
func Evaluate(net *Network, data Dataset, cost Cost) (avgCost float64, correct int, accuracy float64, err error) {
	return trainer.Evaluate(net, data, cost)
}

// Checkpoints.

// CheckpointHeader is the metadata header of a checkpoint file.
type CheckpointHeader = serialization.Header

// Save writes net's parameters to a checkpoint file.
func Save(path string, net *Network, metadata map[string]string) error {
	return serialization.Save(path, net, metadata)
}

// Load reconstructs a network from a checkpoint file.
func Load(path string) (*Network, CheckpointHeader, error) {
	return serialization.LoadNetwork(path)
}
