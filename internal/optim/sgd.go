package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/nn"
)

// SGD is stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	w -= lr * grad
//
// Update rule with momentum:
//
//	v = momentum*v - lr*grad
//	w += v
//
// Velocities are created lazily on the first Step, zero-initialized,
// and persist for the lifetime of the optimizer: one velocity matrix
// per weight matrix and one velocity vector per bias vector.
type SGD struct {
	lr       float64
	momentum float64
	wVel     []*mat.Dense
	bVel     []*mat.VecDense
}

// SGDConfig holds the SGD hyperparameters.
type SGDConfig struct {
	LR       float64 // learning rate (default 0.01)
	Momentum float64 // momentum coefficient, 0 disables (range [0, 1))
}

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// Momentum returns the momentum coefficient.
func (s *SGD) Momentum() float64 { return s.momentum }

// Step applies one update to weights and biases in place.
func (s *SGD) Step(weights []*mat.Dense, biases []*mat.VecDense, grads nn.Gradients) {
	if s.momentum == 0 {
		s.plainStep(weights, biases, grads)
		return
	}
	s.momentumStep(weights, biases, grads)
}

func (s *SGD) plainStep(weights []*mat.Dense, biases []*mat.VecDense, grads nn.Gradients) {
	for l := range weights {
		var wStep mat.Dense
		wStep.Scale(s.lr, grads.Weights[l])
		weights[l].Sub(weights[l], &wStep)

		var bStep mat.VecDense
		bStep.ScaleVec(s.lr, grads.Biases[l])
		biases[l].SubVec(biases[l], &bStep)
	}
}

func (s *SGD) momentumStep(weights []*mat.Dense, biases []*mat.VecDense, grads nn.Gradients) {
	if s.wVel == nil {
		s.wVel = make([]*mat.Dense, len(weights))
		s.bVel = make([]*mat.VecDense, len(biases))
		for l := range weights {
			r, c := weights[l].Dims()
			s.wVel[l] = mat.NewDense(r, c, nil)
			s.bVel[l] = mat.NewVecDense(biases[l].Len(), nil)
		}
	}

	for l := range weights {
		// v = momentum*v - lr*grad; w += v
		var wStep mat.Dense
		wStep.Scale(s.lr, grads.Weights[l])
		s.wVel[l].Scale(s.momentum, s.wVel[l])
		s.wVel[l].Sub(s.wVel[l], &wStep)
		weights[l].Add(weights[l], s.wVel[l])

		var bStep mat.VecDense
		bStep.ScaleVec(s.lr, grads.Biases[l])
		s.bVel[l].ScaleVec(s.momentum, s.bVel[l])
		s.bVel[l].SubVec(s.bVel[l], &bStep)
		biases[l].AddVec(biases[l], s.bVel[l])
	}
}

// StateDict exports the velocity buffers, keyed "velocity.{l}.weight"
// and "velocity.{l}.bias". Empty when momentum is disabled or Step has
// not run yet.
func (s *SGD) StateDict() map[string][]float64 {
	sd := make(map[string][]float64)
	if s.momentum == 0 || s.wVel == nil {
		return sd
	}
	for l := range s.wVel {
		key := velocityKey(l, "weight")
		sd[key] = append([]float64(nil), s.wVel[l].RawMatrix().Data...)
		key = velocityKey(l, "bias")
		sd[key] = append([]float64(nil), s.bVel[l].RawVector().Data...)
	}
	return sd
}

func velocityKey(l int, kind string) string {
	return fmt.Sprintf("velocity.%d.%s", l, kind)
}
