package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Penalty kind names accepted by PenaltyByName.
const (
	PenaltyNone = "none"
	PenaltyL1   = "l1"
	PenaltyL2   = "l2"
)

// Penalty computes the regularization term added to a layer's weight
// gradient before the update step. Biases are never penalized.
type Penalty interface {
	// Name identifies the penalty kind.
	Name() string

	// Gradient returns the penalty gradient for one weight matrix,
	// scaled by lambda over the training-set size n. The result has
	// the same shape as w.
	Gradient(w *mat.Dense, lambda float64, n int) *mat.Dense
}

// NoPenalty applies no regularization: the gradient is zero.
type NoPenalty struct{}

// Name returns PenaltyNone.
func (NoPenalty) Name() string { return PenaltyNone }

// Gradient returns a zero matrix shaped like w.
func (NoPenalty) Gradient(w *mat.Dense, _ float64, _ int) *mat.Dense {
	r, c := w.Dims()
	return mat.NewDense(r, c, nil)
}

// L2 penalizes the squared weight magnitude. Its gradient
// (lambda/n)·w shrinks every weight towards zero in proportion to its
// current size (weight decay).
type L2 struct{}

// Name returns PenaltyL2.
func (L2) Name() string { return PenaltyL2 }

// Gradient returns (lambda/n)·w.
func (L2) Gradient(w *mat.Dense, lambda float64, n int) *mat.Dense {
	var out mat.Dense
	out.Scale(lambda/float64(n), w)
	return &out
}

// L1 penalizes the absolute weight magnitude. Its gradient
// (lambda/n)·sign(w) pushes every nonzero weight towards zero by a
// constant amount, driving small weights to exactly zero.
//
// The subgradient at w = 0 is taken as 0: zero weights receive no
// penalty push.
type L1 struct{}

// Name returns PenaltyL1.
func (L1) Name() string { return PenaltyL1 }

// Gradient returns (lambda/n)·sign(w), with sign(0) = 0.
func (L1) Gradient(w *mat.Dense, lambda float64, n int) *mat.Dense {
	scale := lambda / float64(n)
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		switch {
		case v > 0:
			return scale
		case v < 0:
			return -scale
		default:
			return 0
		}
	}, w)
	return &out
}

// PenaltyByName returns the penalty for a kind name.
func PenaltyByName(name string) (Penalty, error) {
	switch name {
	case PenaltyNone:
		return NoPenalty{}, nil
	case PenaltyL1:
		return L1{}, nil
	case PenaltyL2:
		return L2{}, nil
	default:
		return nil, fmt.Errorf("unknown penalty %q", name)
	}
}
