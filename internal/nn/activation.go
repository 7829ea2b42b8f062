package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid computes the logistic function 1/(1+exp(-z)).
//
// The two-branch formulation only ever exponentiates a non-positive
// value, so the result stays finite for arbitrarily large |z|.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

// SigmoidPrime computes the derivative of the sigmoid, σ(z)·(1−σ(z)).
func SigmoidPrime(z float64) float64 {
	s := Sigmoid(z)
	return s * (1.0 - s)
}

// sigmoidMat applies Sigmoid elementwise and returns a new matrix.
func sigmoidMat(z mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return Sigmoid(v) }, z)
	return &out
}

// sigmoidPrimeMat applies SigmoidPrime elementwise and returns a new matrix.
func sigmoidPrimeMat(z mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return SigmoidPrime(v) }, z)
	return &out
}
