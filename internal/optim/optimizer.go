// Package optim implements the parameter-update side of training: the
// SGD update rule (plain and momentum) and the weight-penalty
// gradients for L1/L2 regularization.
//
// The optimizer consumes already-averaged mini-batch gradients and
// mutates the network parameters in place; it is the only place
// parameters are written during training.
package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/nn"
)

// Optimizer applies one gradient update to a parameter set.
type Optimizer interface {
	// Step updates weights and biases in place from grads. The
	// gradient shapes must match the parameter shapes exactly.
	Step(weights []*mat.Dense, biases []*mat.VecDense, grads nn.Gradients)

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate, for schedules that decay it
	// during training.
	SetLR(lr float64)
}
