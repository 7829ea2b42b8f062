package nn_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/adsingh-64/mlp/internal/nn"
)

func newTestNetwork(t *testing.T, sizes []int, cost nn.Cost, seed int64) *nn.Network {
	t.Helper()
	net, err := nn.New(sizes, cost, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New(%v): %v", sizes, err)
	}
	return net
}

// TestNew_Validation rejects degenerate architectures.
func TestNew_Validation(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := nn.New([]int{3}, nn.Quadratic{}, rnd); err == nil {
		t.Error("single-layer network should be rejected")
	}
	if _, err := nn.New([]int{2, 0, 1}, nn.Quadratic{}, rnd); err == nil {
		t.Error("zero-size layer should be rejected")
	}
	if _, err := nn.New([]int{2, 1}, nil, rnd); err == nil {
		t.Error("nil cost should be rejected")
	}
	if _, err := nn.New([]int{2, 1}, nn.Quadratic{}, nil); err == nil {
		t.Error("nil random source should be rejected")
	}
}

// TestNew_ParameterShapes checks one weight matrix and bias vector per
// non-input layer, shaped (next, prev) and (next).
func TestNew_ParameterShapes(t *testing.T) {
	sizes := []int{4, 3, 2}
	net := newTestNetwork(t, sizes, nn.Quadratic{}, 1)

	weights, biases := net.Weights(), net.Biases()
	if len(weights) != 2 || len(biases) != 2 {
		t.Fatalf("got %d weights, %d biases, want 2 each", len(weights), len(biases))
	}
	for l := 0; l < 2; l++ {
		r, c := weights[l].Dims()
		if r != sizes[l+1] || c != sizes[l] {
			t.Errorf("weights[%d] is %dx%d, want %dx%d", l, r, c, sizes[l+1], sizes[l])
		}
		if biases[l].Len() != sizes[l+1] {
			t.Errorf("biases[%d] has %d entries, want %d", l, biases[l].Len(), sizes[l+1])
		}
	}
}

// TestNew_SeedDeterminism verifies equal seeds give equal parameters
// and different seeds do not.
func TestNew_SeedDeterminism(t *testing.T) {
	a := newTestNetwork(t, []int{3, 4, 2}, nn.Quadratic{}, 7)
	b := newTestNetwork(t, []int{3, 4, 2}, nn.Quadratic{}, 7)
	c := newTestNetwork(t, []int{3, 4, 2}, nn.Quadratic{}, 8)

	if !mat.Equal(a.Weights()[0], b.Weights()[0]) {
		t.Error("same seed should reproduce identical weights")
	}
	if mat.Equal(a.Weights()[0], c.Weights()[0]) {
		t.Error("different seeds should produce different weights")
	}
}

// TestForward_OutputRange checks shape and the (0, 1) sigmoid range.
func TestForward_OutputRange(t *testing.T) {
	net := newTestNetwork(t, []int{2, 3, 2}, nn.Quadratic{}, 1)

	out, err := net.Forward([]float64{0.5, -0.25})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d outputs, want 2", len(out))
	}
	for i, v := range out {
		if v <= 0 || v >= 1 {
			t.Errorf("output[%d] = %g, outside (0, 1)", i, v)
		}
	}
}

// TestForward_ShapeError rejects mismatched input lengths.
func TestForward_ShapeError(t *testing.T) {
	net := newTestNetwork(t, []int{2, 2, 1}, nn.Quadratic{}, 1)

	_, err := net.Forward([]float64{1, 2, 3})
	var se *nn.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want *ShapeError", err)
	}
	if se.Got != 3 || se.Want != 2 {
		t.Errorf("ShapeError got=%d want=%d, expected 3 and 2", se.Got, se.Want)
	}
}

// TestBackprop_GradientShapes checks gradients mirror the parameters.
func TestBackprop_GradientShapes(t *testing.T) {
	net := newTestNetwork(t, []int{3, 5, 2}, nn.CrossEntropy{}, 1)

	grads, err := net.Backprop([]float64{0.1, 0.2, 0.3}, []float64{1, 0})
	if err != nil {
		t.Fatalf("Backprop: %v", err)
	}
	for l, w := range net.Weights() {
		wr, wc := w.Dims()
		gr, gc := grads.Weights[l].Dims()
		if wr != gr || wc != gc {
			t.Errorf("grad weights[%d] is %dx%d, want %dx%d", l, gr, gc, wr, wc)
		}
		if grads.Biases[l].Len() != net.Biases()[l].Len() {
			t.Errorf("grad biases[%d] has %d entries, want %d", l, grads.Biases[l].Len(), net.Biases()[l].Len())
		}
	}
}

// flattenParams copies the network parameters into one flat vector,
// layer by layer, weights row-major then biases.
func flattenParams(net *nn.Network) []float64 {
	var out []float64
	for l := range net.Weights() {
		out = append(out, net.Weights()[l].RawMatrix().Data...)
		out = append(out, net.Biases()[l].RawVector().Data...)
	}
	return out
}

// setParams writes a flat vector back into the network, inverse of
// flattenParams.
func setParams(net *nn.Network, x []float64) {
	for l := range net.Weights() {
		wd := net.Weights()[l].RawMatrix().Data
		copy(wd, x[:len(wd)])
		x = x[len(wd):]
		bd := net.Biases()[l].RawVector().Data
		copy(bd, x[:len(bd)])
		x = x[len(bd):]
	}
}

// TestBackprop_MatchesNumericalGradient compares analytic gradients
// against central finite differences of the cost, for both costs.
func TestBackprop_MatchesNumericalGradient(t *testing.T) {
	input := []float64{0.3, -0.8}
	target := []float64{1, 0, 1}

	for _, cost := range []nn.Cost{nn.Quadratic{}, nn.CrossEntropy{}} {
		net := newTestNetwork(t, []int{2, 4, 3}, cost, 42)

		grads, err := net.Backprop(input, target)
		if err != nil {
			t.Fatalf("%s: Backprop: %v", cost.Name(), err)
		}
		analytic := append(
			append([]float64(nil), grads.Weights[0].RawMatrix().Data...),
			grads.Biases[0].RawVector().Data...)
		analytic = append(analytic, grads.Weights[1].RawMatrix().Data...)
		analytic = append(analytic, grads.Biases[1].RawVector().Data...)

		x0 := flattenParams(net)
		f := func(x []float64) float64 {
			setParams(net, x)
			out, err := net.Forward(input)
			if err != nil {
				t.Fatalf("%s: Forward: %v", cost.Name(), err)
			}
			return cost.Fn(
				mat.NewVecDense(len(out), out),
				mat.NewVecDense(len(target), target),
			)
		}
		numeric := fd.Gradient(nil, f, x0, &fd.Settings{Formula: fd.Central})
		setParams(net, x0)

		for i := range analytic {
			if !floatEqual(analytic[i], numeric[i], 1e-6) {
				t.Errorf("%s: gradient[%d] = %g, numerical %g", cost.Name(), i, analytic[i], numeric[i])
			}
		}
	}
}

// TestBackpropBatch_SumsPerSampleGradients verifies the matrix form
// returns the sum of the individual sample gradients.
func TestBackpropBatch_SumsPerSampleGradients(t *testing.T) {
	net := newTestNetwork(t, []int{2, 3, 2}, nn.CrossEntropy{}, 3)

	inputs := [][]float64{{0.1, 0.9}, {0.7, 0.2}, {-0.4, 0.5}}
	targets := [][]float64{{1, 0}, {0, 1}, {1, 0}}

	X := mat.NewDense(2, 3, nil)
	Y := mat.NewDense(2, 3, nil)
	expected := net.ZeroGradients()
	for i := range inputs {
		X.SetCol(i, inputs[i])
		Y.SetCol(i, targets[i])
		g, err := net.Backprop(inputs[i], targets[i])
		if err != nil {
			t.Fatalf("Backprop sample %d: %v", i, err)
		}
		expected.Add(g)
	}

	batch, err := net.BackpropBatch(X, Y)
	if err != nil {
		t.Fatalf("BackpropBatch: %v", err)
	}
	for l := range expected.Weights {
		if !mat.EqualApprox(batch.Weights[l], expected.Weights[l], 1e-12) {
			t.Errorf("batch weight gradient %d differs from per-sample sum", l)
		}
		if !mat.EqualApprox(batch.Biases[l], expected.Biases[l], 1e-12) {
			t.Errorf("batch bias gradient %d differs from per-sample sum", l)
		}
	}
}

// TestBackpropBatch_Validation covers the dimension checks.
func TestBackpropBatch_Validation(t *testing.T) {
	net := newTestNetwork(t, []int{2, 2, 1}, nn.Quadratic{}, 1)

	if _, err := net.BackpropBatch(mat.NewDense(3, 1, nil), mat.NewDense(1, 1, nil)); err == nil {
		t.Error("wrong input rows should be rejected")
	}
	if _, err := net.BackpropBatch(mat.NewDense(2, 2, nil), mat.NewDense(1, 3, nil)); err == nil {
		t.Error("mismatched batch sizes should be rejected")
	}
}

// TestStateDict_RoundTrip exports and reimports parameters.
func TestStateDict_RoundTrip(t *testing.T) {
	src := newTestNetwork(t, []int{3, 4, 2}, nn.CrossEntropy{}, 11)
	dst := newTestNetwork(t, []int{3, 4, 2}, nn.CrossEntropy{}, 99)

	if err := dst.LoadStateDict(src.StateDict()); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}
	for l := range src.Weights() {
		if !mat.Equal(src.Weights()[l], dst.Weights()[l]) {
			t.Errorf("weights[%d] differ after round trip", l)
		}
		if !mat.Equal(src.Biases()[l], dst.Biases()[l]) {
			t.Errorf("biases[%d] differ after round trip", l)
		}
	}

	// Same input, same output.
	in := []float64{0.2, 0.4, 0.6}
	a, _ := src.Forward(in)
	b, _ := dst.Forward(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("outputs differ after round trip: %v vs %v", a, b)
		}
	}
}

// TestLoadStateDict_Errors covers missing and misshapen entries.
func TestLoadStateDict_Errors(t *testing.T) {
	net := newTestNetwork(t, []int{2, 2, 1}, nn.Quadratic{}, 1)

	if err := net.LoadStateDict(map[string][]float64{}); err == nil {
		t.Error("empty state dict should fail")
	}

	sd := net.StateDict()
	sd["layer.0.weight"] = sd["layer.0.weight"][:2]
	if err := net.LoadStateDict(sd); err == nil {
		t.Error("truncated tensor should fail")
	}
}

// TestFinite_DetectsNaN flags corrupted parameters.
func TestFinite_DetectsNaN(t *testing.T) {
	net := newTestNetwork(t, []int{2, 2, 1}, nn.Quadratic{}, 1)
	if !net.Finite() {
		t.Fatal("fresh network should be finite")
	}

	net.Weights()[0].Set(0, 0, math.NaN())
	if net.Finite() {
		t.Error("NaN weight should make Finite() false")
	}

	net.Weights()[0].Set(0, 0, 0.1)
	net.Biases()[1].SetVec(0, math.Inf(1))
	if net.Finite() {
		t.Error("Inf bias should make Finite() false")
	}
}
