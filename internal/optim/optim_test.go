package optim_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/nn"
	"github.com/adsingh-64/mlp/internal/optim"
)

func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func singleParam(w, b float64) ([]*mat.Dense, []*mat.VecDense) {
	return []*mat.Dense{mat.NewDense(1, 1, []float64{w})},
		[]*mat.VecDense{mat.NewVecDense(1, []float64{b})}
}

func singleGrad(gw, gb float64) nn.Gradients {
	return nn.Gradients{
		Weights: []*mat.Dense{mat.NewDense(1, 1, []float64{gw})},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, []float64{gb})},
	}
}

// TestSGD_SimpleUpdate tests SGD without momentum: w -= lr * grad.
func TestSGD_SimpleUpdate(t *testing.T) {
	weights, biases := singleParam(2.0, 1.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	opt.Step(weights, biases, singleGrad(1.0, 0.5))

	if got := weights[0].At(0, 0); !floatEqual(got, 1.9, 1e-12) {
		t.Errorf("weight after step: got %g, want 1.9", got)
	}
	if got := biases[0].AtVec(0); !floatEqual(got, 0.95, 1e-12) {
		t.Errorf("bias after step: got %g, want 0.95", got)
	}
}

// TestSGD_WithMomentum tests two steps of the momentum rule
// v = momentum*v - lr*grad; w += v.
func TestSGD_WithMomentum(t *testing.T) {
	weights, biases := singleParam(1.0, 0.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = -0.1, w = 0.9
	opt.Step(weights, biases, singleGrad(1.0, 0.0))
	if got := weights[0].At(0, 0); !floatEqual(got, 0.9, 1e-12) {
		t.Fatalf("weight after step 1: got %g, want 0.9", got)
	}

	// Step 2: v = 0.9*(-0.1) - 0.1 = -0.19, w = 0.71
	opt.Step(weights, biases, singleGrad(1.0, 0.0))
	if got := weights[0].At(0, 0); !floatEqual(got, 0.71, 1e-12) {
		t.Errorf("weight after step 2: got %g, want 0.71", got)
	}
}

// TestSGD_MomentumTracksBiases verifies bias velocities accumulate just
// like weight velocities.
func TestSGD_MomentumTracksBiases(t *testing.T) {
	weights, biases := singleParam(0.0, 1.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	opt.Step(weights, biases, singleGrad(0.0, 1.0))
	opt.Step(weights, biases, singleGrad(0.0, 1.0))

	if got := biases[0].AtVec(0); !floatEqual(got, 0.71, 1e-12) {
		t.Errorf("bias after 2 momentum steps: got %g, want 0.71", got)
	}
}

// TestSGD_ZeroMomentumMatchesPlain checks momentum 0 reduces to the
// plain update.
func TestSGD_ZeroMomentumMatchesPlain(t *testing.T) {
	wA, bA := singleParam(1.0, 1.0)
	wB, bB := singleParam(1.0, 1.0)
	plain := optim.NewSGD(optim.SGDConfig{LR: 0.5})
	zero := optim.NewSGD(optim.SGDConfig{LR: 0.5, Momentum: 0})

	for i := 0; i < 3; i++ {
		plain.Step(wA, bA, singleGrad(0.2, -0.3))
		zero.Step(wB, bB, singleGrad(0.2, -0.3))
	}
	if wA[0].At(0, 0) != wB[0].At(0, 0) || bA[0].AtVec(0) != bB[0].AtVec(0) {
		t.Error("momentum 0 should match the plain update exactly")
	}
}

// TestSGD_SetLR checks mid-run learning-rate changes take effect.
func TestSGD_SetLR(t *testing.T) {
	weights, biases := singleParam(1.0, 0.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.2})

	if opt.LR() != 0.2 {
		t.Fatalf("LR() = %g, want 0.2", opt.LR())
	}
	opt.SetLR(0.1)
	opt.Step(weights, biases, singleGrad(1.0, 0.0))
	if got := weights[0].At(0, 0); !floatEqual(got, 0.9, 1e-12) {
		t.Errorf("weight after SetLR step: got %g, want 0.9", got)
	}
}

// TestSGD_DefaultLR checks the zero-value config falls back to 0.01.
func TestSGD_DefaultLR(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{})
	if opt.LR() != 0.01 {
		t.Errorf("default LR = %g, want 0.01", opt.LR())
	}
}

// TestSGD_StateDict exports velocities only once momentum has stepped.
func TestSGD_StateDict(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if len(opt.StateDict()) != 0 {
		t.Error("state dict should be empty before the first step")
	}

	weights, biases := singleParam(1.0, 0.0)
	opt.Step(weights, biases, singleGrad(1.0, 2.0))

	sd := opt.StateDict()
	wv, ok := sd["velocity.0.weight"]
	if !ok || len(wv) != 1 {
		t.Fatalf("missing velocity.0.weight in %v", sd)
	}
	if !floatEqual(wv[0], -0.1, 1e-12) {
		t.Errorf("weight velocity = %g, want -0.1", wv[0])
	}
	bv := sd["velocity.0.bias"]
	if !floatEqual(bv[0], -0.2, 1e-12) {
		t.Errorf("bias velocity = %g, want -0.2", bv[0])
	}
}
