// Copyright 2025 The mlp Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mlp trains fully connected feedforward neural networks with
// sigmoid activations using mini-batch stochastic gradient descent.
//
// The package covers the full training pipeline: matrix-based
// backpropagation, quadratic and cross-entropy costs, L1/L2
// regularization, momentum, learning-rate schedules, early stopping
// and checkpointing. Dense linear algebra is provided by gonum.
//
// A minimal training run:
//
//	net, err := mlp.NewNetwork([]int{2, 2, 1}, mlp.CrossEntropy{}, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := mlp.Train(context.Background(), net, mlp.Config{
//		Epochs:       2000,
//		BatchSize:    4,
//		LearningRate: 0.5,
//		Seed:         1,
//	}, mlp.XOR(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("best: %d/%d at epoch %d\n",
//		result.History[result.BestEpoch].Correct,
//		result.History[result.BestEpoch].Total,
//		result.BestEpoch)
package mlp
