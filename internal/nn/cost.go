package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cost kind names accepted by CostByName and written to checkpoints.
const (
	CostQuadratic    = "quadratic"
	CostCrossEntropy = "cross-entropy"
)

// logClamp keeps cross-entropy outputs strictly inside (0, 1) so that
// log never sees 0.
const logClamp = 1e-12

// Cost scores a network output against a target and produces the
// output-layer error that seeds backpropagation.
//
// Fn operates on a single sample. Delta operates on whole mini-batches:
// z, a and y hold one sample per column.
type Cost interface {
	// Name identifies the cost kind (see CostQuadratic, CostCrossEntropy).
	Name() string

	// Fn returns the cost of output a against desired output y.
	Fn(a, y mat.Vector) float64

	// Delta returns the output-layer error given pre-activations z,
	// activations a and targets y.
	Delta(z, a, y mat.Matrix) *mat.Dense
}

// Quadratic is the squared-error cost ½‖a−y‖².
type Quadratic struct{}

// Name returns CostQuadratic.
func (Quadratic) Name() string { return CostQuadratic }

// Fn returns ½‖a−y‖².
func (Quadratic) Fn(a, y mat.Vector) float64 {
	sum := 0.0
	for i := 0; i < a.Len(); i++ {
		d := a.AtVec(i) - y.AtVec(i)
		sum += d * d
	}
	return 0.5 * sum
}

// Delta returns (a−y) ⊙ σ′(z).
func (Quadratic) Delta(z, a, y mat.Matrix) *mat.Dense {
	var diff mat.Dense
	diff.Sub(a, y)
	var out mat.Dense
	out.MulElem(&diff, sigmoidPrimeMat(z))
	return &out
}

// CrossEntropy is the cost −Σ[y·ln(a) + (1−y)·ln(1−a)].
//
// Activations are clamped to [logClamp, 1−logClamp] before taking logs,
// so a saturated output together with a matching target contributes 0
// rather than NaN.
type CrossEntropy struct{}

// Name returns CostCrossEntropy.
func (CrossEntropy) Name() string { return CostCrossEntropy }

// Fn returns −Σ[y·ln(a) + (1−y)·ln(1−a)] over the output units.
func (CrossEntropy) Fn(a, y mat.Vector) float64 {
	sum := 0.0
	for i := 0; i < a.Len(); i++ {
		av := clamp(a.AtVec(i))
		yv := y.AtVec(i)
		sum -= yv*math.Log(av) + (1.0-yv)*math.Log(1.0-av)
	}
	return sum
}

// Delta returns (a−y).
//
// The σ′(z) factor cancels against the cost's derivative, which is what
// lets cross-entropy keep learning when output neurons saturate. z is
// accepted only to satisfy the Cost interface.
func (CrossEntropy) Delta(_, a, y mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Sub(a, y)
	return &out
}

func clamp(v float64) float64 {
	if v < logClamp {
		return logClamp
	}
	if v > 1.0-logClamp {
		return 1.0 - logClamp
	}
	return v
}

// CostByName returns the cost for a kind name.
func CostByName(name string) (Cost, error) {
	switch name {
	case CostQuadratic:
		return Quadratic{}, nil
	case CostCrossEntropy:
		return CrossEntropy{}, nil
	default:
		return nil, fmt.Errorf("unknown cost %q", name)
	}
}
